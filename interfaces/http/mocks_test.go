package http

import (
	"context"
	"encoding/json"

	"alfreds-toolbox/domain/model"

	"github.com/stretchr/testify/mock"
)

type spotifyUsecaseMock struct{ mock.Mock }

func (m *spotifyUsecaseMock) GetShowEpisodes(ctx context.Context, showID string, limit, offset int) ([]model.Episode, error) {
	args := m.Called(ctx, showID, limit, offset)
	episodes, _ := args.Get(0).([]model.Episode)
	return episodes, args.Error(1)
}

func (m *spotifyUsecaseMock) ClearCache(ctx context.Context, showID string) (int, error) {
	args := m.Called(ctx, showID)
	return args.Int(0), args.Error(1)
}

type analyticsUsecaseMock struct{ mock.Mock }

func (m *analyticsUsecaseMock) GetAnalyticsData(ctx context.Context, rangeName string, fromCacheOnly bool) (*model.AnalyticsReport, error) {
	args := m.Called(ctx, rangeName, fromCacheOnly)
	report, _ := args.Get(0).(*model.AnalyticsReport)
	return report, args.Error(1)
}

func (m *analyticsUsecaseMock) ValidateProperty(ctx context.Context) model.PropertyStatus {
	return m.Called(ctx).Get(0).(model.PropertyStatus)
}

func (m *analyticsUsecaseMock) ValidateAgainstGA(ctx context.Context, rangeName string) (*model.GAValidation, error) {
	args := m.Called(ctx, rangeName)
	validation, _ := args.Get(0).(*model.GAValidation)
	return validation, args.Error(1)
}

func (m *analyticsUsecaseMock) PreloadRange(ctx context.Context, rangeName model.RangeName) {
	m.Called(ctx, rangeName)
}

func (m *analyticsUsecaseMock) MaybePreloadRanges(ctx context.Context) {
	m.Called(ctx)
}

func (m *analyticsUsecaseMock) ClearCache(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type settingsUsecaseMock struct{ mock.Mock }

func (m *settingsUsecaseMock) SaveSettings(ctx context.Context, fields map[string]string) ([]string, error) {
	args := m.Called(ctx, fields)
	saved, _ := args.Get(0).([]string)
	return saved, args.Error(1)
}

func (m *settingsUsecaseMock) GetSettings(ctx context.Context) (*model.Settings, error) {
	args := m.Called(ctx)
	settings, _ := args.Get(0).(*model.Settings)
	return settings, args.Error(1)
}

func (m *settingsUsecaseMock) Widgets(ctx context.Context) ([]model.Widget, []string) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Widget), args.Get(1).([]string)
}

func (m *settingsUsecaseMock) IsWidgetActive(ctx context.Context, id string) bool {
	return m.Called(ctx, id).Bool(0)
}

type licenseUsecaseMock struct{ mock.Mock }

func (m *licenseUsecaseMock) GetCredentials(ctx context.Context, serviceType string) (json.RawMessage, error) {
	args := m.Called(ctx, serviceType)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *licenseUsecaseMock) GetLicenseInfo(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *licenseUsecaseMock) ValidateLicense(ctx context.Context, key *string) model.LicenseValidation {
	return m.Called(ctx, key).Get(0).(model.LicenseValidation)
}

func (m *licenseUsecaseMock) ClearCache(ctx context.Context) {
	m.Called(ctx)
}

func (m *licenseUsecaseMock) PopNotice(ctx context.Context) (*model.AdminNotice, bool) {
	args := m.Called(ctx)
	notice, _ := args.Get(0).(*model.AdminNotice)
	return notice, args.Bool(1)
}

type newsletterUsecaseMock struct{ mock.Mock }

func (m *newsletterUsecaseMock) Subscribe(ctx context.Context, signup model.NewsletterSignup) error {
	return m.Called(ctx, signup).Error(0)
}
