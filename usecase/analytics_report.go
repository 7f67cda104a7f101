package usecase

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"alfreds-toolbox/domain/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const topPagesLimit = 5

// IIconSource supplies inline SVG markup for countries and browsers.
type IIconSource interface {
	Flag(code string) string
	Browser(name string) string
}

var (
	germanRegions = display.German.Regions()
	deviceTitle   = cases.Title(language.German, cases.NoLower)
)

// FormatReport reshapes raw Data API rows into the dashboard payload.
func FormatReport(raw *model.RawReports, icons IIconSource) *model.AnalyticsReport {
	if raw == nil {
		raw = &model.RawReports{}
	}
	var overview []string
	if len(raw.Overview) > 0 {
		overview = raw.Overview[0].Metrics
	}
	totalUsers := metricInt(overview, 0)

	report := &model.AnalyticsReport{
		Overview: formatOverview(overview),
		TopPages: formatPages(raw.Pages),
	}
	report.Countries, report.CountryOrder = formatCountries(raw.Countries, totalUsers, icons)
	report.Browsers, report.BrowserOrder = formatBrowsers(raw.Browsers, totalUsers, icons)
	report.Devices, report.DeviceOrder = formatDevices(raw.Devices, totalUsers)
	return report
}

func formatOverview(metrics []string) model.Overview {
	avg := "0:00"
	if len(metrics) > 2 {
		duration, errDuration := strconv.ParseFloat(metrics[2], 64)
		visitors, errVisitors := strconv.ParseFloat(metrics[0], 64)
		if errDuration == nil && errVisitors == nil {
			if visitors > 0 {
				avg = FormatDuration(duration / visitors)
			} else {
				avg = FormatDuration(0)
			}
		}
	}
	return model.Overview{
		Visitors:       model.Metric[int64]{Current: metricInt(metrics, 0), Label: "Besucher"},
		Pageviews:      model.Metric[int64]{Current: metricInt(metrics, 1), Label: "Seitenaufrufe"},
		AvgDuration:    model.Metric[string]{Current: avg, Label: "Durchschn. Dauer"},
		BounceRate:     model.Metric[float64]{Current: roundTo(metricFloat(metrics, 3)*100, 2), Label: "Absprungrate"},
		EngagementRate: model.Metric[float64]{Current: roundTo(metricFloat(metrics, 4)*100, 2), Label: "Engagement Rate"},
	}
}

// FormatDuration renders seconds as "Mm Ss".
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	whole := int64(seconds)
	return fmt.Sprintf("%dm %ds", whole/60, whole%60)
}

// NormalizePath strips the query string and trailing slashes; the root stays "/".
func NormalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if path == "" {
		return "/"
	}
	return path
}

func formatPages(rows []model.ReportRow) []model.PageStat {
	seen := make(map[string]bool)
	pages := make([]model.PageStat, 0, len(rows))
	for _, row := range rows {
		path := NormalizePath(dimension(row, 0))
		if seen[path] {
			continue
		}
		seen[path] = true
		pages = append(pages, model.PageStat{Path: path, Views: metricInt(row.Metrics, 0)})
	}
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Views > pages[j].Views })
	if len(pages) > topPagesLimit {
		pages = pages[:topPagesLimit]
	}
	return pages
}

func formatCountries(rows []model.ReportRow, totalUsers int64, icons IIconSource) (map[string]model.CountryStat, []string) {
	countries := make(map[string]model.CountryStat, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		name := dimension(row, 0)
		users := metricInt(row.Metrics, 0)
		if name == "" || users <= 0 {
			continue
		}
		code := model.CountryCode(name)
		if code == model.UnknownCountry {
			continue
		}
		key := strings.ToLower(code)
		stat := model.CountryStat{
			Name:    germanCountryName(code),
			Users:   users,
			Percent: percentOf(users, totalUsers),
			Code:    key,
		}
		if icons != nil {
			stat.FlagSVG = icons.Flag(code)
		}
		if _, seen := countries[key]; !seen {
			order = append(order, key)
		}
		countries[key] = stat
	}
	sort.SliceStable(order, func(i, j int) bool { return countries[order[i]].Users > countries[order[j]].Users })
	return countries, order
}

func germanCountryName(code string) string {
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	if name := germanRegions.Name(region); name != "" {
		return name
	}
	return code
}

func formatBrowsers(rows []model.ReportRow, totalUsers int64, icons IIconSource) (map[string]model.BrowserStat, []string) {
	browsers := make(map[string]model.BrowserStat, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		name := dimension(row, 0)
		users := metricInt(row.Metrics, 0)
		if name == "" || users <= 0 {
			continue
		}
		stat := model.BrowserStat{Name: name, Users: users, Percent: percentOf(users, totalUsers)}
		if icons != nil {
			stat.BrowserSVG = icons.Browser(name)
		}
		if _, seen := browsers[name]; !seen {
			order = append(order, name)
		}
		browsers[name] = stat
	}
	return browsers, order
}

func formatDevices(rows []model.ReportRow, totalUsers int64) (map[string]model.DeviceStat, []string) {
	devices := make(map[string]model.DeviceStat, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		name := deviceTitle.String(dimension(row, 0))
		if name == "" {
			continue
		}
		users := metricInt(row.Metrics, 0)
		if _, seen := devices[name]; !seen {
			order = append(order, name)
		}
		devices[name] = model.DeviceStat{Name: name, Users: users, Percent: percentOf(users, totalUsers)}
	}
	return devices, order
}

func percentOf(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return roundTo(float64(part)/float64(total)*100, 1)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func dimension(row model.ReportRow, i int) string {
	if i < len(row.Dimensions) {
		return row.Dimensions[i]
	}
	return ""
}

func metricFloat(metrics []string, i int) float64 {
	if i >= len(metrics) {
		return 0
	}
	v, err := strconv.ParseFloat(metrics[i], 64)
	if err != nil {
		return 0
	}
	return v
}

func metricInt(metrics []string, i int) int64 {
	return int64(metricFloat(metrics, i))
}
