package model

import "time"

type RangeName string

const (
	RangeToday      RangeName = "today"
	RangeYesterday  RangeName = "yesterday"
	RangeLast7Days  RangeName = "last7days"
	RangeLast30Days RangeName = "last30days"
	RangeThisMonth  RangeName = "thisMonth"
	RangeLastMonth  RangeName = "lastMonth"
)

var rangeTTL = map[RangeName]time.Duration{
	RangeToday:      900 * time.Second,
	RangeYesterday:  86400 * time.Second,
	RangeLast7Days:  3600 * time.Second,
	RangeLast30Days: 7200 * time.Second,
	RangeThisMonth:  3600 * time.Second,
	RangeLastMonth:  86400 * time.Second,
}

const defaultRangeTTL = 7200 * time.Second

// ParseRangeName maps unknown names to last30days.
func ParseRangeName(raw string) RangeName {
	name := RangeName(raw)
	if _, ok := rangeTTL[name]; ok {
		return name
	}
	return RangeLast30Days
}

// TTL is how long a report for this range stays cached.
func (r RangeName) TTL() time.Duration {
	if ttl, ok := rangeTTL[r]; ok {
		return ttl
	}
	return defaultRangeTTL
}

// PreloadRanges are warmed in the background when missing.
var PreloadRanges = []RangeName{RangeToday, RangeLast7Days, RangeLast30Days}

// DateRange holds inclusive YYYY-MM-DD bounds.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Metric[T any] struct {
	Current T      `json:"current"`
	Label   string `json:"label"`
}

type Overview struct {
	Visitors       Metric[int64]   `json:"visitors"`
	Pageviews      Metric[int64]   `json:"pageviews"`
	AvgDuration    Metric[string]  `json:"avgDuration"`
	BounceRate     Metric[float64] `json:"bounceRate"`
	EngagementRate Metric[float64] `json:"engagementRate"`
}

type PageStat struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

type CountryStat struct {
	Name    string  `json:"name"`
	Users   int64   `json:"users"`
	Percent float64 `json:"percent"`
	Code    string  `json:"code"`
	FlagSVG string  `json:"flagSvg"`
}

type BrowserStat struct {
	Name       string  `json:"name"`
	Users      int64   `json:"users"`
	Percent    float64 `json:"percent"`
	BrowserSVG string  `json:"browserSvg"`
}

type DeviceStat struct {
	Name    string  `json:"name"`
	Users   int64   `json:"users"`
	Percent float64 `json:"percent"`
}

type ReportDebug struct {
	DateRange RangeName `json:"date_range"`
	Dates     DateRange `json:"dates"`
	IsCached  bool      `json:"is_cached"`
	CacheKey  string    `json:"cache_key"`
}

// AnalyticsReport is the display-ready dashboard payload. Countries are keyed
// by lower-case ISO code, browsers and devices by name. The *Order slices list
// the keys in display order since JSON objects carry none.
type AnalyticsReport struct {
	Overview     Overview               `json:"overview"`
	TopPages     []PageStat             `json:"topPages"`
	Countries    map[string]CountryStat `json:"countries"`
	CountryOrder []string               `json:"countryOrder"`
	Browsers     map[string]BrowserStat `json:"browsers"`
	BrowserOrder []string               `json:"browserOrder"`
	Devices      map[string]DeviceStat  `json:"devices"`
	DeviceOrder  []string               `json:"deviceOrder"`
	Debug        *ReportDebug           `json:"debug,omitempty"`
}

// ReportRow is one dimension/metric row of a raw Data API report.
type ReportRow struct {
	Dimensions []string
	Metrics    []string
}

// RawReports holds the five raw query results of one refresh.
type RawReports struct {
	Overview  []ReportRow
	Pages     []ReportRow
	Countries []ReportRow
	Browsers  []ReportRow
	Devices   []ReportRow
}

type PropertyStatus string

const (
	PropertySuccess          PropertyStatus = "success"
	PropertyPermissionDenied PropertyStatus = "permission_denied"
	PropertyInvalid          PropertyStatus = "invalid_property"
	PropertyError            PropertyStatus = "error"
)

// GAValidation pairs a report with thousands-separated headline numbers.
type GAValidation struct {
	Report           *AnalyticsReport  `json:"raw_api_data"`
	FormattedMetrics map[string]string `json:"formatted_metrics"`
}
