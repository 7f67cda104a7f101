package usecase

import (
	"time"

	"alfreds-toolbox/domain/model"
)

const dateLayout = "2006-01-02"

// Clock yields the current time in the site's timezone.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// NewClock uses the named IANA zone and falls back to UTC when it cannot be loaded.
func NewClock(timezone string) Clock {
	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		loc = time.UTC
	}
	return Clock{Now: time.Now, Location: loc}
}

func (c Clock) today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	t := now().In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DateRangeFor resolves a named range against the clock's current day.
func (c Clock) DateRangeFor(name model.RangeName) model.DateRange {
	today := c.today()
	yesterday := today.AddDate(0, 0, -1)
	span := func(start, end time.Time) model.DateRange {
		return model.DateRange{Start: start.Format(dateLayout), End: end.Format(dateLayout)}
	}

	switch name {
	case model.RangeToday:
		return span(today, today)
	case model.RangeYesterday:
		return span(yesterday, yesterday)
	case model.RangeLast7Days:
		return span(today.AddDate(0, 0, -7), yesterday)
	case model.RangeThisMonth:
		return span(today.AddDate(0, 0, 1-today.Day()), today)
	case model.RangeLastMonth:
		firstOfThisMonth := today.AddDate(0, 0, 1-today.Day())
		return span(firstOfThisMonth.AddDate(0, -1, 0), firstOfThisMonth.AddDate(0, 0, -1))
	default:
		return span(today.AddDate(0, 0, -30), yesterday)
	}
}
