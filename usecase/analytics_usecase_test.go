package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/infrastructure/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

var testAccount = model.ServiceAccount{ClientEmail: "sa@p.iam", PrivateKey: "PEM", TokenURI: "https://t"}

func rawReports() *model.RawReports {
	return &model.RawReports{
		Overview:  []model.ReportRow{{Metrics: []string{"120", "300", "2400", "0.5", "0.5"}}},
		Pages:     []model.ReportRow{row("/", "100")},
		Countries: []model.ReportRow{row("Germany", "100")},
		Browsers:  []model.ReportRow{row("Chrome", "120")},
		Devices:   []model.ReportRow{row("desktop", "120")},
	}
}

type analyticsFixture struct {
	uc    IAnalyticsUsecase
	api   *analyticsAPIMock
	queue *preloadQueueMock
	cache *cache.MemoryCache
	clock Clock
}

func newAnalyticsFixture(t *testing.T, propertyOption string, creds error) analyticsFixture {
	api := new(analyticsAPIMock)
	queue := new(preloadQueueMock)
	transients := cache.NewMemoryCache()
	options := newOptionStore(nil)
	if propertyOption != "" {
		options.values[model.OptionGAPropertyID] = propertyOption
	}
	clock := Clock{Now: func() time.Time { return time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC) }, Location: time.UTC}
	uc := NewAnalyticsUsecase(api, credentialProviderStub{account: testAccount, err: creds}, options, transients, queue, iconStub{}, clock, "")
	return analyticsFixture{uc: uc, api: api, queue: queue, cache: transients, clock: clock}
}

func TestGetAnalyticsData_ColdCacheFetchesOnce(t *testing.T) {
	f := newAnalyticsFixture(t, "12345", nil)
	dates := f.clock.DateRangeFor(model.RangeLast7Days)
	f.api.On("FetchReports", mock.Anything, testAccount, "12345", dates).Return(rawReports(), nil).Once()
	ctx := context.Background()

	fresh, err := f.uc.GetAnalyticsData(ctx, "last7days", false)
	require.NoError(t, err)
	assert.Equal(t, int64(120), fresh.Overview.Visitors.Current)
	assert.Equal(t, &model.ReportDebug{DateRange: model.RangeLast7Days, Dates: dates, IsCached: false, CacheKey: "ga_data_12345_last7days"}, fresh.Debug)

	cached, err := f.uc.GetAnalyticsData(ctx, "last7days", true)
	require.NoError(t, err)
	assert.True(t, cached.Debug.IsCached)
	assert.Equal(t, fresh.Overview, cached.Overview)
	assert.Equal(t, fresh.Countries, cached.Countries)
	f.api.AssertNumberOfCalls(t, "FetchReports", 1)
}

func TestGetAnalyticsData_CacheOnlyMiss(t *testing.T) {
	f := newAnalyticsFixture(t, "12345", nil)

	_, err := f.uc.GetAnalyticsData(context.Background(), "today", true)

	var analyticsErr *model.AnalyticsError
	require.True(t, errors.As(err, &analyticsErr))
	assert.Equal(t, model.AnalyticsNotCached, analyticsErr.Kind)
	f.api.AssertNotCalled(t, "FetchReports", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetAnalyticsData_UnknownRangeUsesLast30Days(t *testing.T) {
	f := newAnalyticsFixture(t, "12345", nil)
	f.api.On("FetchReports", mock.Anything, testAccount, "12345", f.clock.DateRangeFor(model.RangeLast30Days)).Return(rawReports(), nil)

	report, err := f.uc.GetAnalyticsData(context.Background(), "forever", false)

	require.NoError(t, err)
	assert.Equal(t, "ga_data_12345_last30days", report.Debug.CacheKey)
}

func TestGetAnalyticsData_ClassifiesErrors(t *testing.T) {
	f := newAnalyticsFixture(t, "12345", nil)
	f.api.On("FetchReports", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &googleapi.Error{Code: 403, Message: "User does not have sufficient permissions", Body: `{"error":{"status":"PERMISSION_DENIED"}}`})

	_, err := f.uc.GetAnalyticsData(context.Background(), "today", false)

	var analyticsErr *model.AnalyticsError
	require.True(t, errors.As(err, &analyticsErr))
	assert.Equal(t, model.AnalyticsPermissionDenied, analyticsErr.Kind)
	assert.Equal(t, 0, f.cache.Len())
}

func TestGetAnalyticsData_ConfigurationMissing(t *testing.T) {
	f := newAnalyticsFixture(t, "", nil)
	_, err := f.uc.GetAnalyticsData(context.Background(), "today", false)
	assert.True(t, IsConfigurationMissing(err))

	g := newAnalyticsFixture(t, "12345", model.ErrConfigurationMissing)
	_, err = g.uc.GetAnalyticsData(context.Background(), "today", false)
	assert.True(t, IsConfigurationMissing(err))
}

func TestValidateProperty(t *testing.T) {
	cases := []struct {
		code int
		err  error
		want model.PropertyStatus
	}{
		{200, nil, model.PropertySuccess},
		{403, errors.New("forbidden"), model.PropertyPermissionDenied},
		{404, errors.New("not found"), model.PropertyInvalid},
		{400, errors.New("bad"), model.PropertyInvalid},
		{500, errors.New("boom"), model.PropertyError},
		{0, errors.New("rpc error: INVALID_ARGUMENT"), model.PropertyInvalid},
		{0, errors.New("dial tcp: timeout"), model.PropertyError},
	}
	for _, tc := range cases {
		f := newAnalyticsFixture(t, "12345", nil)
		f.api.On("Probe", mock.Anything, testAccount, "12345").Return(tc.code, tc.err)
		assert.Equal(t, tc.want, f.uc.ValidateProperty(context.Background()))
	}
}

func TestValidateProperty_NoPropertyID(t *testing.T) {
	f := newAnalyticsFixture(t, "", nil)
	assert.Equal(t, model.PropertyInvalid, f.uc.ValidateProperty(context.Background()))
}

func TestValidateAgainstGA(t *testing.T) {
	f := newAnalyticsFixture(t, "12345", nil)
	raw := rawReports()
	raw.Overview[0].Metrics = []string{"12345", "1234567", "24690", "0.123", "0.877"}
	f.api.On("FetchReports", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(raw, nil)

	validation, err := f.uc.ValidateAgainstGA(context.Background(), "last30days")

	require.NoError(t, err)
	assert.Equal(t, "12,345", validation.FormattedMetrics["visitors"])
	assert.Equal(t, "1,234,567", validation.FormattedMetrics["pageviews"])
	assert.Equal(t, "0m 2s", validation.FormattedMetrics["avg_duration"])
	assert.Equal(t, "12.30%", validation.FormattedMetrics["bounce_rate"])
	assert.Equal(t, "87.70%", validation.FormattedMetrics["engagement_rate"])
}

func TestPreloadRange(t *testing.T) {
	f := newAnalyticsFixture(t, "12345", nil)
	f.api.On("FetchReports", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(rawReports(), nil).Once()
	ctx := context.Background()

	f.uc.PreloadRange(ctx, model.RangeToday)
	f.uc.PreloadRange(ctx, model.RangeToday)

	_, ok, _ := f.cache.Get(ctx, "ga_data_12345_today")
	assert.True(t, ok)
	f.api.AssertNumberOfCalls(t, "FetchReports", 1)
}

func TestMaybePreloadRanges(t *testing.T) {
	f := newAnalyticsFixture(t, "12345", nil)
	ctx := context.Background()
	require.NoError(t, f.cache.Set(ctx, "ga_data_12345_today", []byte(`{}`), time.Hour))
	f.queue.On("Enqueue", mock.Anything, model.RangeLast7Days).Return(nil).Once()
	f.queue.On("Enqueue", mock.Anything, model.RangeLast30Days).Return(nil).Once()

	f.uc.MaybePreloadRanges(WithInteractive(ctx))
	f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)

	f.uc.MaybePreloadRanges(ctx)
	f.queue.AssertExpectations(t)
}

func TestAnalyticsClearCache(t *testing.T) {
	f := newAnalyticsFixture(t, "12345", nil)
	ctx := context.Background()
	require.NoError(t, f.cache.Set(ctx, "ga_data_12345_today", []byte(`{}`), time.Hour))
	require.NoError(t, f.cache.Set(ctx, "ga_data_999_lastMonth", []byte(`{}`), time.Hour))
	require.NoError(t, f.cache.Set(ctx, "spotify_episodes_a_10_0", []byte(`[]`), time.Hour))

	removed, err := f.uc.ClearCache(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, f.cache.Len())
}

func TestGetAnalyticsData_RefreshOutlivesCancelledCaller(t *testing.T) {
	f := newAnalyticsFixture(t, "12345", nil)
	dates := f.clock.DateRangeFor(model.RangeToday)
	live := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
	f.api.On("FetchReports", live, testAccount, "12345", dates).Return(rawReports(), nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.uc.GetAnalyticsData(ctx, "today", false)

	require.NoError(t, err)
	assert.Equal(t, int64(120), report.Overview.Visitors.Current)
	f.api.AssertExpectations(t)
}
