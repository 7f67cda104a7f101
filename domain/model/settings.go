package model

const (
	OptionLicenseKey           = "alfreds_toolbox_license_key"
	OptionSpotifyClientID      = "alfreds_toolbox_spotify_client_id"
	OptionSpotifyClientSecret  = "alfreds_toolbox_spotify_client_secret"
	OptionSpotifyCacheDuration = "alfreds_toolbox_spotify_cache_duration"
	OptionGAPropertyID         = "alfreds_toolbox_ga_property_id"
	OptionActiveWidgets        = "alfreds_toolbox_active_widgets"
	OptionTutorialVideos       = "alfreds_toolbox_tutorial_videos"
)

// SpotifyCacheDurations are the selectable cache lifetimes in seconds.
var SpotifyCacheDurations = []int{1800, 3600, 7200, 14400, 28800, 43200, 86400}

const DefaultSpotifyCacheDuration = 3600

type TutorialVideo struct {
	Title  string `json:"title"`
	LoomID string `json:"loom_id"`
}

type Widget struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Settings is the admin-facing view of all declared options. Secrets are masked.
type Settings struct {
	LicenseKey           string          `json:"license_key"`
	SpotifyClientID      string          `json:"spotify_client_id"`
	SpotifyClientSecret  string          `json:"spotify_client_secret"`
	SpotifyCacheDuration int             `json:"spotify_cache_duration"`
	GAPropertyID         string          `json:"ga_property_id"`
	ActiveWidgets        []string        `json:"active_widgets"`
	TutorialVideos       []TutorialVideo `json:"tutorial_videos"`
}
