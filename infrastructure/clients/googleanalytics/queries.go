package googleanalytics

import (
	"alfreds-toolbox/domain/model"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

func dateRanges(dates model.DateRange) []*analyticsdata.DateRange {
	return []*analyticsdata.DateRange{{StartDate: dates.Start, EndDate: dates.End}}
}

func metrics(names ...string) []*analyticsdata.Metric {
	out := make([]*analyticsdata.Metric, 0, len(names))
	for _, n := range names {
		out = append(out, &analyticsdata.Metric{Name: n})
	}
	return out
}

func dimension(name string) []*analyticsdata.Dimension {
	return []*analyticsdata.Dimension{{Name: name}}
}

func byMetricDesc(name string) []*analyticsdata.OrderBy {
	return []*analyticsdata.OrderBy{{Metric: &analyticsdata.MetricOrderBy{MetricName: name}, Desc: true}}
}

// overviewQuery metric order is relied upon by the report formatter.
func overviewQuery(dates model.DateRange) *analyticsdata.RunReportRequest {
	return &analyticsdata.RunReportRequest{
		DateRanges: dateRanges(dates),
		Metrics:    metrics("activeUsers", "screenPageViews", "userEngagementDuration", "bounceRate", "engagementRate"),
	}
}

func pagesQuery(dates model.DateRange) *analyticsdata.RunReportRequest {
	return &analyticsdata.RunReportRequest{
		DateRanges: dateRanges(dates),
		Metrics:    metrics("screenPageViews"),
		Dimensions: dimension("pagePath"),
		OrderBys:   byMetricDesc("screenPageViews"),
	}
}

func countriesQuery(dates model.DateRange) *analyticsdata.RunReportRequest {
	return &analyticsdata.RunReportRequest{
		DateRanges: dateRanges(dates),
		Metrics:    metrics("activeUsers"),
		Dimensions: dimension("country"),
		OrderBys:   byMetricDesc("activeUsers"),
		Limit:      5,
	}
}

func browsersQuery(dates model.DateRange) *analyticsdata.RunReportRequest {
	return &analyticsdata.RunReportRequest{
		DateRanges: dateRanges(dates),
		Metrics:    metrics("activeUsers"),
		Dimensions: dimension("browser"),
		OrderBys:   byMetricDesc("activeUsers"),
		Limit:      5,
	}
}

func devicesQuery(dates model.DateRange) *analyticsdata.RunReportRequest {
	return &analyticsdata.RunReportRequest{
		DateRanges: dateRanges(dates),
		Metrics:    metrics("activeUsers"),
		Dimensions: dimension("deviceCategory"),
		OrderBys:   byMetricDesc("activeUsers"),
	}
}

func probeQuery() *analyticsdata.RunReportRequest {
	return &analyticsdata.RunReportRequest{
		DateRanges: dateRanges(model.DateRange{Start: "yesterday", End: "yesterday"}),
		Metrics:    metrics("activeUsers"),
	}
}
