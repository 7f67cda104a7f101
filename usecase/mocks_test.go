package usecase

import (
	"context"
	"encoding/json"
	"sync"

	"alfreds-toolbox/domain/model"

	"github.com/stretchr/testify/mock"
)

type optionStoreStub struct {
	mu     sync.Mutex
	values map[string]string
}

func newOptionStore(values map[string]string) *optionStoreStub {
	if values == nil {
		values = map[string]string{}
	}
	return &optionStoreStub{values: values}
}

func (s *optionStoreStub) GetOption(_ context.Context, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok, nil
}

func (s *optionStoreStub) UpdateOption(_ context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	return nil
}

func (s *optionStoreStub) DeleteOption(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[name]
	delete(s.values, name)
	return ok, nil
}

// secureStoreStub keeps JSON in memory; encryption is covered by the security package.
type secureStoreStub struct {
	values map[string][]byte
}

func newSecureStore() *secureStoreStub { return &secureStoreStub{values: map[string][]byte{}} }

func (s *secureStoreStub) Store(_ context.Context, key string, value interface{}) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	s.values[key] = raw
	return true
}

func (s *secureStoreStub) Get(_ context.Context, key string, out interface{}) bool {
	raw, ok := s.values[key]
	return ok && json.Unmarshal(raw, out) == nil
}

func (s *secureStoreStub) Delete(_ context.Context, key string) bool {
	delete(s.values, key)
	return true
}

func (s *secureStoreStub) Has(_ context.Context, key string) bool {
	_, ok := s.values[key]
	return ok
}

type licenseAPIMock struct{ mock.Mock }

func (m *licenseAPIMock) VerifyCredentials(ctx context.Context, domain, licenseKey string) (*model.LicenseResponse, error) {
	args := m.Called(ctx, domain, licenseKey)
	resp, _ := args.Get(0).(*model.LicenseResponse)
	return resp, args.Error(1)
}

func (m *licenseAPIMock) Ping(ctx context.Context, domain, licenseKey string) (int, error) {
	args := m.Called(ctx, domain, licenseKey)
	return args.Int(0), args.Error(1)
}

type spotifyAPIMock struct{ mock.Mock }

func (m *spotifyAPIMock) GetShowEpisodes(ctx context.Context, creds model.SpotifyCredentials, showID string, limit, offset int) (*model.EpisodePage, error) {
	args := m.Called(ctx, creds, showID, limit, offset)
	page, _ := args.Get(0).(*model.EpisodePage)
	return page, args.Error(1)
}

type analyticsAPIMock struct{ mock.Mock }

func (m *analyticsAPIMock) FetchReports(ctx context.Context, account model.ServiceAccount, propertyID string, dates model.DateRange) (*model.RawReports, error) {
	args := m.Called(ctx, account, propertyID, dates)
	raw, _ := args.Get(0).(*model.RawReports)
	return raw, args.Error(1)
}

func (m *analyticsAPIMock) Probe(ctx context.Context, account model.ServiceAccount, propertyID string) (int, error) {
	args := m.Called(ctx, account, propertyID)
	return args.Int(0), args.Error(1)
}

type credentialSourceMock struct{ mock.Mock }

func (m *credentialSourceMock) GetCredentials(ctx context.Context, serviceType string) (json.RawMessage, error) {
	args := m.Called(ctx, serviceType)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

type credentialProviderStub struct {
	spotify model.SpotifyCredentials
	account model.ServiceAccount
	err     error
}

func (s credentialProviderStub) SpotifyCredentials(context.Context) (model.SpotifyCredentials, error) {
	return s.spotify, s.err
}

func (s credentialProviderStub) ServiceAccount(context.Context) (model.ServiceAccount, error) {
	return s.account, s.err
}

type preloadQueueMock struct{ mock.Mock }

func (m *preloadQueueMock) Enqueue(ctx context.Context, rangeName model.RangeName) error {
	return m.Called(ctx, rangeName).Error(0)
}

type webhookMock struct{ mock.Mock }

func (m *webhookMock) Subscribe(ctx context.Context, signup model.NewsletterSignup) error {
	return m.Called(ctx, signup).Error(0)
}

type licenseCacheSpy struct {
	ILicenseUsecase
	cleared int
}

func (s *licenseCacheSpy) ClearCache(context.Context) { s.cleared++ }

type iconStub struct{}

func (iconStub) Flag(code string) string    { return "<svg flag=\"" + code + "\"></svg>" }
func (iconStub) Browser(name string) string { return "<svg browser=\"" + name + "\"></svg>" }
