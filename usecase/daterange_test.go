package usecase

import (
	"testing"
	"time"

	"alfreds-toolbox/domain/model"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t *testing.T, value string) Clock {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	now, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	if err != nil {
		t.Fatal(err)
	}
	return Clock{Now: func() time.Time { return now }, Location: loc}
}

func TestDateRangeFor(t *testing.T) {
	clock := fixedClock(t, "2025-03-15 10:00")

	cases := map[model.RangeName]model.DateRange{
		model.RangeToday:      {Start: "2025-03-15", End: "2025-03-15"},
		model.RangeYesterday:  {Start: "2025-03-14", End: "2025-03-14"},
		model.RangeLast7Days:  {Start: "2025-03-08", End: "2025-03-14"},
		model.RangeLast30Days: {Start: "2025-02-13", End: "2025-03-14"},
		model.RangeThisMonth:  {Start: "2025-03-01", End: "2025-03-15"},
		model.RangeLastMonth:  {Start: "2025-02-01", End: "2025-02-28"},
	}
	for name, want := range cases {
		assert.Equal(t, want, clock.DateRangeFor(name), string(name))
	}
}

func TestDateRangeFor_UnknownIsLast30Days(t *testing.T) {
	clock := fixedClock(t, "2025-03-15 10:00")
	assert.Equal(t, clock.DateRangeFor(model.RangeLast30Days), clock.DateRangeFor(model.ParseRangeName("lastYear")))
}

func TestDateRangeFor_UsesSiteTimezone(t *testing.T) {
	// 23:30 UTC on Jan 31st is already February in Berlin.
	clock := fixedClock(t, "2025-02-01 00:30")
	assert.Equal(t, model.DateRange{Start: "2025-01-01", End: "2025-01-31"}, clock.DateRangeFor(model.RangeLastMonth))
	assert.Equal(t, model.DateRange{Start: "2025-02-01", End: "2025-02-01"}, clock.DateRangeFor(model.RangeThisMonth))
}

func TestDateRangeFor_LastMonthAcrossYear(t *testing.T) {
	clock := fixedClock(t, "2025-01-31 12:00")
	assert.Equal(t, model.DateRange{Start: "2024-12-01", End: "2024-12-31"}, clock.DateRangeFor(model.RangeLastMonth))
}
