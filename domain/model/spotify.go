package model

type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// Episode is a podcast episode as returned by the Spotify Web API.
type Episode struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	HTMLDescription string       `json:"html_description,omitempty"`
	ReleaseDate     string       `json:"release_date"`
	DurationMs      int          `json:"duration_ms"`
	Explicit        bool         `json:"explicit"`
	AudioPreviewURL string       `json:"audio_preview_url,omitempty"`
	ExternalURLs    ExternalURLs `json:"external_urls"`
	Images          []Image      `json:"images"`
}

// CoverURL returns the largest image, which Spotify lists first.
func (e Episode) CoverURL() string {
	if len(e.Images) == 0 {
		return ""
	}
	return e.Images[0].URL
}

// DurationMinutes rounds the duration to whole minutes.
func (e Episode) DurationMinutes() int {
	return (e.DurationMs + 30000) / 60000
}

type EpisodePage struct {
	Items  []*Episode `json:"items"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
	Next   *string    `json:"next"`
}

// Episodes drops the null entries Spotify emits for unavailable episodes.
func (p EpisodePage) Episodes() []Episode {
	out := make([]Episode, 0, len(p.Items))
	for _, item := range p.Items {
		if item != nil && item.ID != "" {
			out = append(out, *item)
		}
	}
	return out
}
