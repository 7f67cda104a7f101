package model

import (
	"encoding/json"
	"time"
)

const (
	ServiceSpotify        = "spotify"
	ServiceServiceAccount = "service_account"
)

// CachedCredential is the encrypted cache entry for one service's credentials.
type CachedCredential struct {
	Data    json.RawMessage `json:"data"`
	Expires int64           `json:"expires"`
}

// Fresh reports whether the entry holds data and its expiry lies in the future.
func (c CachedCredential) Fresh(now time.Time) bool {
	return len(c.Data) > 0 && string(c.Data) != "null" && now.Unix() < c.Expires
}

type SpotifyCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func (c SpotifyCredentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// ServiceAccount is the subset of a Google service-account key file the token exchange needs.
type ServiceAccount struct {
	Type         string `json:"type,omitempty"`
	ProjectID    string `json:"project_id,omitempty"`
	PrivateKeyID string `json:"private_key_id,omitempty"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

func (s ServiceAccount) Complete() bool {
	return s.ClientEmail != "" && s.PrivateKey != "" && s.TokenURI != ""
}

type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid is false for empty tokens and for tokens whose expiry has passed.
func (t AccessToken) Valid(now time.Time) bool {
	return t.Token != "" && now.Before(t.ExpiresAt)
}

type LicenseValidation struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AdminNotice is the last license API failure, shown once in the dashboard.
type AdminNotice struct {
	Message string `json:"message"`
	Time    int64  `json:"time"`
}

// LicenseResponse is the body of the verify-credentials endpoint.
type LicenseResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
	Data    struct {
		Credentials map[string]json.RawMessage `json:"credentials"`
		License     json.RawMessage            `json:"license,omitempty"`
	} `json:"data"`
}
