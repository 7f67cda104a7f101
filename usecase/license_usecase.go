package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"
	"alfreds-toolbox/infrastructure/logger"
)

const (
	credentialCacheTTL = 3600 * time.Second
	noticeKey          = "alfreds_toolbox_api_error"
	noticeTTL          = 5 * time.Minute
	credentialPrefix   = "credentials_"
)

const (
	msgNoLicenseKey   = "Kein Lizenzschlüssel hinterlegt"
	msgInvalidLicense = "Ungültiger Lizenzschlüssel"
	msgLicenseValid   = "Lizenz gültig"
)

// errNoLicenseKey is not worth an admin notice; the settings page already asks for a key.
var errNoLicenseKey = fmt.Errorf("%w: no license key", model.ErrConfigurationMissing)

type ILicenseUsecase interface {
	repository.ICredentialSource
	GetLicenseInfo(ctx context.Context) (json.RawMessage, error)
	// ValidateLicense checks key, or the stored license key when key is nil.
	ValidateLicense(ctx context.Context, key *string) model.LicenseValidation
	ClearCache(ctx context.Context)
	// PopNotice returns the pending admin notice and removes it.
	PopNotice(ctx context.Context) (*model.AdminNotice, bool)
}

type LicenseUsecase struct {
	api        repository.ILicenseAPI
	secure     repository.ISecureStore
	options    repository.IOptionStore
	transients repository.ITransientCache
	domain     string
	now        func() time.Time
}

func NewLicenseUsecase(api repository.ILicenseAPI, secure repository.ISecureStore, options repository.IOptionStore, transients repository.ITransientCache, siteURL string) ILicenseUsecase {
	return &LicenseUsecase{
		api:        api,
		secure:     secure,
		options:    options,
		transients: transients,
		domain:     hostOf(siteURL),
		now:        time.Now,
	}
}

func hostOf(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil || u.Hostname() == "" {
		return siteURL
	}
	return u.Hostname()
}

// GetCredentials serves the encrypted cache while fresh and refreshes it from the license API otherwise.
func (u *LicenseUsecase) GetCredentials(ctx context.Context, serviceType string) (json.RawMessage, error) {
	var cached model.CachedCredential
	if u.secure.Get(ctx, credentialPrefix+serviceType, &cached) && cached.Fresh(u.now()) {
		logger.GetLogger().WithField("service", serviceType).Debug("Using cached credentials")
		return cached.Data, nil
	}

	resp, err := u.fetch(ctx)
	if errors.Is(err, errNoLicenseKey) {
		return nil, err
	}
	if err != nil {
		return nil, u.fail(ctx, err)
	}
	creds, ok := resp.Data.Credentials[serviceType]
	if !ok || isEmptyJSON(creds) {
		return nil, u.fail(ctx, fmt.Errorf("%w: No credentials available for %s", model.ErrConfigurationMissing, serviceType))
	}

	entry := model.CachedCredential{Data: creds, Expires: u.now().Add(credentialCacheTTL).Unix()}
	if !u.secure.Store(ctx, credentialPrefix+serviceType, entry) {
		logger.GetLogger().WithField("service", serviceType).Warn("Credentials fetched but not cached")
	}
	return creds, nil
}

func (u *LicenseUsecase) GetLicenseInfo(ctx context.Context) (json.RawMessage, error) {
	resp, err := u.fetch(ctx)
	if errors.Is(err, errNoLicenseKey) {
		return nil, err
	}
	if err != nil {
		return nil, u.fail(ctx, err)
	}
	return resp.Data.License, nil
}

func (u *LicenseUsecase) ValidateLicense(ctx context.Context, key *string) model.LicenseValidation {
	licenseKey := ""
	if key != nil {
		licenseKey = *key
	} else {
		licenseKey, _ = u.licenseKey(ctx)
	}
	if licenseKey == "" {
		return model.LicenseValidation{Success: false, Message: msgNoLicenseKey}
	}

	status, err := u.api.Ping(ctx, u.domain, licenseKey)
	if err != nil {
		return model.LicenseValidation{Success: false, Message: err.Error()}
	}
	if status != http.StatusOK {
		return model.LicenseValidation{Success: false, Message: msgInvalidLicense}
	}
	return model.LicenseValidation{Success: true, Message: msgLicenseValid}
}

func (u *LicenseUsecase) ClearCache(ctx context.Context) {
	for _, service := range []string{model.ServiceSpotify, model.ServiceServiceAccount} {
		u.secure.Delete(ctx, credentialPrefix+service)
	}
}

func (u *LicenseUsecase) PopNotice(ctx context.Context) (*model.AdminNotice, bool) {
	raw, ok, err := u.transients.Get(ctx, noticeKey)
	if err != nil || !ok {
		return nil, false
	}
	_ = u.transients.Delete(ctx, noticeKey)
	var notice model.AdminNotice
	if err := json.Unmarshal(raw, &notice); err != nil {
		return nil, false
	}
	return &notice, true
}

func (u *LicenseUsecase) fetch(ctx context.Context) (*model.LicenseResponse, error) {
	licenseKey, err := u.licenseKey(ctx)
	if err != nil {
		return nil, err
	}
	if licenseKey == "" {
		return nil, errNoLicenseKey
	}
	resp, err := u.api.VerifyCredentials(ctx, u.domain, licenseKey)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "license API reported failure"
		}
		return nil, &model.UpstreamError{Service: "license", StatusCode: http.StatusOK, Message: msg}
	}
	return resp, nil
}

func (u *LicenseUsecase) licenseKey(ctx context.Context) (string, error) {
	key, _, err := u.options.GetOption(ctx, model.OptionLicenseKey)
	if err != nil {
		return "", err
	}
	return key, nil
}

// fail logs err and keeps it as an admin notice for a few minutes.
func (u *LicenseUsecase) fail(ctx context.Context, err error) error {
	logger.GetLogger().WithField("error", err).Error("AlfredsToolbox API Error")

	message := err.Error()
	var upstream *model.UpstreamError
	if errors.As(err, &upstream) {
		message = upstream.Message
	}
	notice, _ := json.Marshal(model.AdminNotice{Message: message, Time: u.now().Unix()})
	if setErr := u.transients.Set(ctx, noticeKey, notice, noticeTTL); setErr != nil {
		logger.GetLogger().WithField("error", setErr).Warn("Storing admin notice failed")
	}
	return err
}

func isEmptyJSON(raw json.RawMessage) bool {
	switch string(raw) {
	case "", "null", "{}", "[]", `""`, "false", "0":
		return true
	}
	return false
}
