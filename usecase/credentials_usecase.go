package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"
	"alfreds-toolbox/infrastructure/logger"
)

// ICredentialProvider resolves the credentials each upstream adapter needs.
type ICredentialProvider interface {
	SpotifyCredentials(ctx context.Context) (model.SpotifyCredentials, error)
	ServiceAccount(ctx context.Context) (model.ServiceAccount, error)
}

// CredentialDefaults are the values configured outside the option store.
type CredentialDefaults struct {
	SpotifyClientID       string
	SpotifyClientSecret   string
	ServiceAccountKeyFile string
}

type CredentialProvider struct {
	options  repository.IOptionStore
	license  repository.ICredentialSource
	defaults CredentialDefaults
}

func NewCredentialProvider(options repository.IOptionStore, license repository.ICredentialSource, defaults CredentialDefaults) ICredentialProvider {
	return &CredentialProvider{options: options, license: license, defaults: defaults}
}

func (p *CredentialProvider) SpotifyCredentials(ctx context.Context) (model.SpotifyCredentials, error) {
	local := model.SpotifyCredentials{
		ClientID:     p.option(ctx, model.OptionSpotifyClientID),
		ClientSecret: p.option(ctx, model.OptionSpotifyClientSecret),
	}
	if local.Complete() {
		return local, nil
	}
	configured := model.SpotifyCredentials{ClientID: p.defaults.SpotifyClientID, ClientSecret: p.defaults.SpotifyClientSecret}
	if configured.Complete() {
		return configured, nil
	}

	// A missing license key or service entry already wraps ErrConfigurationMissing.
	raw, err := p.license.GetCredentials(ctx, model.ServiceSpotify)
	if err != nil {
		return model.SpotifyCredentials{}, fmt.Errorf("spotify credentials: %w", err)
	}
	var remote model.SpotifyCredentials
	if err := json.Unmarshal(raw, &remote); err != nil || !remote.Complete() {
		return model.SpotifyCredentials{}, fmt.Errorf("%w: spotify credentials incomplete", model.ErrConfigurationMissing)
	}
	return remote, nil
}

func (p *CredentialProvider) ServiceAccount(ctx context.Context) (model.ServiceAccount, error) {
	if path := p.defaults.ServiceAccountKeyFile; path != "" {
		account, err := readServiceAccount(path)
		if err == nil {
			return account, nil
		}
		logger.GetLogger().WithField("error", err).WithField("path", path).Warn("Service account key file unusable, asking license API")
	}

	raw, err := p.license.GetCredentials(ctx, model.ServiceServiceAccount)
	if err != nil {
		return model.ServiceAccount{}, fmt.Errorf("service account: %w", err)
	}
	var account model.ServiceAccount
	if err := json.Unmarshal(raw, &account); err != nil || !account.Complete() {
		return model.ServiceAccount{}, fmt.Errorf("%w: service account incomplete", model.ErrConfigurationMissing)
	}
	return account, nil
}

func (p *CredentialProvider) option(ctx context.Context, name string) string {
	value, _, err := p.options.GetOption(ctx, name)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("option", name).Error("Error reading option")
		return ""
	}
	return value
}

func readServiceAccount(path string) (model.ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ServiceAccount{}, err
	}
	var account model.ServiceAccount
	if err := json.Unmarshal(data, &account); err != nil {
		return model.ServiceAccount{}, err
	}
	if !account.Complete() {
		return model.ServiceAccount{}, fmt.Errorf("%w: key file lacks client_email, private_key or token_uri", model.ErrInvalidInput)
	}
	return account, nil
}
