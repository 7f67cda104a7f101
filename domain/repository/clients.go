package repository

import (
	"context"
	"encoding/json"

	"alfreds-toolbox/domain/model"
)

// ILicenseAPI talks to the remote license/credential endpoint.
type ILicenseAPI interface {
	// VerifyCredentials posts the domain and key and returns the decoded response data.
	VerifyCredentials(ctx context.Context, domain, licenseKey string) (*model.LicenseResponse, error)
	// Ping posts the key and returns only the HTTP status code.
	Ping(ctx context.Context, domain, licenseKey string) (int, error)
}

type ISpotifyAPI interface {
	GetShowEpisodes(ctx context.Context, creds model.SpotifyCredentials, showID string, limit, offset int) (*model.EpisodePage, error)
}

// IAnalyticsAPI runs Data API reports for one property.
type IAnalyticsAPI interface {
	FetchReports(ctx context.Context, account model.ServiceAccount, propertyID string, dates model.DateRange) (*model.RawReports, error)
	// Probe runs a single-metric report and returns the HTTP status of the call.
	Probe(ctx context.Context, account model.ServiceAccount, propertyID string) (int, error)
}

type INewsletterWebhook interface {
	Subscribe(ctx context.Context, signup model.NewsletterSignup) error
}

// ICredentialSource resolves per-service credentials from the license API.
type ICredentialSource interface {
	GetCredentials(ctx context.Context, serviceType string) (json.RawMessage, error)
}

// IPreloadQueue dispatches one-shot analytics cache warm-ups.
type IPreloadQueue interface {
	Enqueue(ctx context.Context, rangeName model.RangeName) error
}
