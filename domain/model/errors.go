package model

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationMissing is returned when neither local settings nor the license API supply credentials.
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrCacheMiss            = errors.New("cache miss")
	ErrUpstream             = errors.New("upstream request failed")
	ErrDecryption           = errors.New("decryption failed")
	ErrInvalidInput         = errors.New("invalid input")
)

// UpstreamError carries the status and message of a failed remote call.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

type AnalyticsErrorKind string

const (
	AnalyticsPermissionDenied     AnalyticsErrorKind = "permission_denied"
	AnalyticsInvalidProperty      AnalyticsErrorKind = "invalid_property"
	AnalyticsAPIError             AnalyticsErrorKind = "api_error"
	AnalyticsConfigurationMissing AnalyticsErrorKind = "configuration_missing"
	AnalyticsNotCached            AnalyticsErrorKind = "not_cached"
)

// AnalyticsError is the classified failure of an analytics fetch.
type AnalyticsError struct {
	Kind    AnalyticsErrorKind `json:"error"`
	Message string             `json:"message,omitempty"`
	Err     error              `json:"-"`
}

func (e *AnalyticsError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AnalyticsError) Unwrap() error { return e.Err }
