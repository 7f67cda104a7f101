package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"
	"alfreds-toolbox/infrastructure/clients/googleanalytics"
	"alfreds-toolbox/infrastructure/logger"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const analyticsKeyPrefix = "ga_data_"

type interactiveKey struct{}

// WithInteractive marks ctx as serving an admin AJAX request; background preloads are skipped for it.
func WithInteractive(ctx context.Context) context.Context {
	return context.WithValue(ctx, interactiveKey{}, true)
}

// flightTimeout bounds a shared refresh once it no longer follows its first caller.
const flightTimeout = 45 * time.Second

// detached keeps the values of ctx but not its cancellation. Singleflight
// waiters share the result, so the first caller leaving must not fail them.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
}

func isInteractive(ctx context.Context) bool {
	v, _ := ctx.Value(interactiveKey{}).(bool)
	return v
}

type IAnalyticsUsecase interface {
	// GetAnalyticsData serves the cached report or fetches a fresh one. With
	// fromCacheOnly a miss returns a not_cached AnalyticsError instead of fetching.
	GetAnalyticsData(ctx context.Context, rangeName string, fromCacheOnly bool) (*model.AnalyticsReport, error)
	ValidateProperty(ctx context.Context) model.PropertyStatus
	ValidateAgainstGA(ctx context.Context, rangeName string) (*model.GAValidation, error)
	PreloadRange(ctx context.Context, rangeName model.RangeName)
	MaybePreloadRanges(ctx context.Context)
	ClearCache(ctx context.Context) (int, error)
}

type AnalyticsUsecase struct {
	api               repository.IAnalyticsAPI
	credentials       ICredentialProvider
	options           repository.IOptionStore
	cache             repository.ITransientCache
	queue             repository.IPreloadQueue
	icons             IIconSource
	clock             Clock
	defaultPropertyID string
	group             singleflight.Group
}

func NewAnalyticsUsecase(api repository.IAnalyticsAPI, credentials ICredentialProvider, options repository.IOptionStore, cache repository.ITransientCache, queue repository.IPreloadQueue, icons IIconSource, clock Clock, defaultPropertyID string) IAnalyticsUsecase {
	return &AnalyticsUsecase{
		api:               api,
		credentials:       credentials,
		options:           options,
		cache:             cache,
		queue:             queue,
		icons:             icons,
		clock:             clock,
		defaultPropertyID: defaultPropertyID,
	}
}

func analyticsKey(propertyID string, rangeName model.RangeName) string {
	return analyticsKeyPrefix + propertyID + "_" + string(rangeName)
}

func (u *AnalyticsUsecase) propertyID(ctx context.Context) string {
	if value, ok, err := u.options.GetOption(ctx, model.OptionGAPropertyID); err == nil && ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return u.defaultPropertyID
}

func (u *AnalyticsUsecase) GetAnalyticsData(ctx context.Context, rangeName string, fromCacheOnly bool) (*model.AnalyticsReport, error) {
	name := model.ParseRangeName(rangeName)
	propertyID := u.propertyID(ctx)
	if propertyID == "" {
		return nil, googleanalytics.ClassifyError(model.ErrConfigurationMissing)
	}
	key := analyticsKey(propertyID, name)
	dates := u.clock.DateRangeFor(name)
	debug := func(cached bool) *model.ReportDebug {
		return &model.ReportDebug{DateRange: name, Dates: dates, IsCached: cached, CacheKey: key}
	}

	if report, ok := u.cached(ctx, key); ok {
		report.Debug = debug(true)
		return report, nil
	}
	if fromCacheOnly {
		return nil, &model.AnalyticsError{Kind: model.AnalyticsNotCached, Err: model.ErrCacheMiss}
	}

	v, err, _ := u.group.Do(key, func() (interface{}, error) {
		flightCtx, cancel := detached(ctx)
		defer cancel()
		return u.refresh(flightCtx, propertyID, name, key, dates)
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("range", name).Error("GA API Error")
		return nil, googleanalytics.ClassifyError(err)
	}
	report := *v.(*model.AnalyticsReport)
	report.Debug = debug(false)
	return &report, nil
}

// refresh fetches, formats and caches one range. The stored copy carries no debug block.
func (u *AnalyticsUsecase) refresh(ctx context.Context, propertyID string, name model.RangeName, key string, dates model.DateRange) (*model.AnalyticsReport, error) {
	account, err := u.credentials.ServiceAccount(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := u.api.FetchReports(ctx, account, propertyID, dates)
	if err != nil {
		return nil, err
	}
	report := FormatReport(raw, u.icons)
	if encoded, err := json.Marshal(report); err == nil {
		if err := u.cache.Set(ctx, key, encoded, name.TTL()); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Caching analytics report failed")
		}
	}
	return report, nil
}

func (u *AnalyticsUsecase) cached(ctx context.Context, key string) (*model.AnalyticsReport, bool) {
	raw, ok, err := u.cache.Get(ctx, key)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Reading analytics cache failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var report model.AnalyticsReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, false
	}
	return &report, true
}

func (u *AnalyticsUsecase) ValidateProperty(ctx context.Context) model.PropertyStatus {
	propertyID := u.propertyID(ctx)
	if propertyID == "" {
		return model.PropertyInvalid
	}
	account, err := u.credentials.ServiceAccount(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Property validation without credentials")
		return model.PropertyError
	}
	code, err := u.api.Probe(ctx, account, propertyID)
	if err != nil && code == 0 {
		switch googleanalytics.ClassifyError(err).Kind {
		case model.AnalyticsPermissionDenied:
			return model.PropertyPermissionDenied
		case model.AnalyticsInvalidProperty:
			return model.PropertyInvalid
		}
		return model.PropertyError
	}
	return googleanalytics.StatusFromCode(code)
}

func (u *AnalyticsUsecase) ValidateAgainstGA(ctx context.Context, rangeName string) (*model.GAValidation, error) {
	report, err := u.GetAnalyticsData(ctx, rangeName, false)
	if err != nil {
		return nil, err
	}
	p := message.NewPrinter(language.English)
	o := report.Overview
	return &model.GAValidation{
		Report: report,
		FormattedMetrics: map[string]string{
			"visitors":        p.Sprintf("%d", o.Visitors.Current),
			"pageviews":       p.Sprintf("%d", o.Pageviews.Current),
			"avg_duration":    o.AvgDuration.Current,
			"bounce_rate":     p.Sprintf("%.2f", o.BounceRate.Current) + "%",
			"engagement_rate": p.Sprintf("%.2f", o.EngagementRate.Current) + "%",
		},
	}, nil
}

func (u *AnalyticsUsecase) PreloadRange(ctx context.Context, rangeName model.RangeName) {
	propertyID := u.propertyID(ctx)
	if propertyID == "" {
		return
	}
	key := analyticsKey(propertyID, rangeName)
	if _, ok := u.cached(ctx, key); ok {
		return
	}
	dates := u.clock.DateRangeFor(rangeName)
	if _, err, _ := u.group.Do(key, func() (interface{}, error) {
		flightCtx, cancel := detached(ctx)
		defer cancel()
		return u.refresh(flightCtx, propertyID, rangeName, key, dates)
	}); err != nil {
		logger.GetLogger().WithField("error", err).WithField("range", rangeName).Error("Failed to preload analytics range")
	}
}

func (u *AnalyticsUsecase) MaybePreloadRanges(ctx context.Context) {
	if isInteractive(ctx) || u.queue == nil {
		return
	}
	propertyID := u.propertyID(ctx)
	if propertyID == "" {
		return
	}
	for _, name := range model.PreloadRanges {
		if _, ok := u.cached(ctx, analyticsKey(propertyID, name)); ok {
			continue
		}
		if err := u.queue.Enqueue(ctx, name); err != nil {
			logger.GetLogger().WithField("error", err).WithField("range", name).Warn("Scheduling analytics preload failed")
		}
	}
}

func (u *AnalyticsUsecase) ClearCache(ctx context.Context) (int, error) {
	removed, err := u.cache.DeletePrefix(ctx, analyticsKeyPrefix)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error clearing analytics cache")
		return 0, err
	}
	return removed, nil
}

// IsConfigurationMissing reports whether err stems from absent GA or Spotify setup.
func IsConfigurationMissing(err error) bool {
	var analyticsErr *model.AnalyticsError
	if errors.As(err, &analyticsErr) && analyticsErr.Kind == model.AnalyticsConfigurationMissing {
		return true
	}
	return errors.Is(err, model.ErrConfigurationMissing)
}
