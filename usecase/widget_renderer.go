package usecase

import (
	"bytes"
	"context"
	"html/template"
	"slices"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/infrastructure/logger"
)

const (
	LoadMorePageSize = 10
	// LoadMoreNonceAction guards the public load_more_episodes action.
	LoadMoreNonceAction = "spotify_load_more"

	msgMissingShowID = "Bitte Spotify Show ID eingeben"
	msgNoEpisodes    = "Keine Episoden gefunden"
)

var (
	widgetLayouts   = []string{"cover_top", "cover_left", "cover_right"}
	widgetLinkTypes = []string{"none", "cover", "title", "box", "custom"}
)

// WidgetSettings are the podcast widget controls as the page builder submits them.
type WidgetSettings struct {
	ShowID          string `form:"spotify_show_id" json:"spotify_show_id"`
	EpisodesCount   int    `form:"episodes_count" json:"episodes_count"`
	Pagination      string `form:"pagination" json:"pagination"`
	ShowCover       string `form:"show_cover" json:"show_cover"`
	ShowTitle       string `form:"show_title" json:"show_title"`
	ShowDescription string `form:"show_description" json:"show_description"`
	ShowDuration    string `form:"show_duration" json:"show_duration"`
	Layout          string `form:"layout" json:"layout"`
	LinkType        string `form:"link_type" json:"link_type"`
	CustomURL       string `form:"custom_url" json:"custom_url"`
}

// DefaultWidgetSettings mirrors the control defaults of the widget.
func DefaultWidgetSettings() WidgetSettings {
	return WidgetSettings{
		EpisodesCount:   10,
		Pagination:      "none",
		ShowCover:       "yes",
		ShowTitle:       "yes",
		ShowDescription: "yes",
		ShowDuration:    "yes",
		Layout:          "cover_left",
		LinkType:        "title",
	}
}

func (s WidgetSettings) normalized() WidgetSettings {
	if s.EpisodesCount < 1 {
		s.EpisodesCount = 10
	}
	s.EpisodesCount = min(s.EpisodesCount, 50)
	if !slices.Contains(widgetLayouts, s.Layout) {
		s.Layout = "cover_left"
	}
	if !slices.Contains(widgetLinkTypes, s.LinkType) {
		s.LinkType = "title"
	}
	if s.Pagination != "load_more" {
		s.Pagination = "none"
	}
	return s
}

type episodeView struct {
	Episode  model.Episode
	Link     string
	Settings WidgetSettings
}

func (v episodeView) Cover() string { return v.Episode.CoverURL() }
func (v episodeView) Minutes() int  { return v.Episode.DurationMinutes() }

var widgetTemplates = template.Must(template.New("widget").Parse(`
{{- define "episode" -}}
{{- $s := .Settings -}}
{{- if eq $s.LinkType "box"}}<a href="{{.Link}}" target="_blank">{{end -}}
<div class="at_episode at_layout-{{$s.Layout}}">
{{- if and (eq $s.ShowCover "yes") .Cover -}}
{{- if eq $s.LinkType "cover"}}<a href="{{.Link}}" target="_blank">{{end -}}
<div class="at_episode-cover"><img src="{{.Cover}}" alt="{{.Episode.Name}}"></div>
{{- if eq $s.LinkType "cover"}}</a>{{end -}}
{{- end -}}
<div class="at_episode-content">
{{- if eq $s.ShowTitle "yes" -}}
<h3 class="at_episode-title">{{if or (eq $s.LinkType "title") (and (eq $s.LinkType "custom") .Link)}}<a href="{{.Link}}" target="_blank">{{.Episode.Name}}</a>{{else}}{{.Episode.Name}}{{end}}</h3>
{{- end -}}
{{- if eq $s.ShowDescription "yes"}}<div class="at_episode-description">{{.Episode.Description}}</div>{{end -}}
{{- if and (eq $s.ShowDuration "yes") .Episode.DurationMs}}<div class="at_episode-duration">{{.Minutes}} Minuten</div>{{end -}}
</div>
</div>
{{- if eq $s.LinkType "box"}}</a>{{end -}}
{{- end -}}

{{- define "episodes" -}}
{{- range .}}{{template "episode" .}}{{end -}}
{{- end -}}

{{- define "grid" -}}
<div class="at_spotify-podcast-grid">{{template "episodes" .Episodes}}</div>
{{- if eq .Settings.Pagination "load_more"}}
<button class="at_load-more-episodes" data-show-id="{{.Settings.ShowID}}" data-offset="{{.Settings.EpisodesCount}}" data-nonce="{{.Nonce}}">Weitere Episoden laden</button>
{{- end -}}
{{- end -}}
`))

type IWidgetRenderer interface {
	// Render produces the widget markup for a show. The nonce is embedded in the load-more button.
	Render(ctx context.Context, settings WidgetSettings, nonce string) (string, error)
	RenderEpisodes(episodes []model.Episode, settings WidgetSettings) (string, error)
}

type WidgetRenderer struct {
	spotify ISpotifyUsecase
}

func NewWidgetRenderer(spotify ISpotifyUsecase) IWidgetRenderer {
	return &WidgetRenderer{spotify: spotify}
}

func (r *WidgetRenderer) Render(ctx context.Context, settings WidgetSettings, nonce string) (string, error) {
	settings = settings.normalized()
	if settings.ShowID == "" {
		return msgMissingShowID, nil
	}
	episodes, err := r.spotify.GetShowEpisodes(ctx, settings.ShowID, settings.EpisodesCount, 0)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("show", settings.ShowID).Warn("Rendering widget without episodes")
	}
	if len(episodes) == 0 {
		return msgNoEpisodes, nil
	}

	var buf bytes.Buffer
	data := struct {
		Episodes []episodeView
		Settings WidgetSettings
		Nonce    string
	}{views(episodes, settings), settings, nonce}
	if err := widgetTemplates.ExecuteTemplate(&buf, "grid", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *WidgetRenderer) RenderEpisodes(episodes []model.Episode, settings WidgetSettings) (string, error) {
	var buf bytes.Buffer
	if err := widgetTemplates.ExecuteTemplate(&buf, "episodes", views(episodes, settings.normalized())); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func views(episodes []model.Episode, settings WidgetSettings) []episodeView {
	out := make([]episodeView, 0, len(episodes))
	for _, episode := range episodes {
		link := episode.ExternalURLs.Spotify
		if settings.LinkType == "custom" {
			link = settings.CustomURL
		}
		out = append(out, episodeView{Episode: episode, Link: link, Settings: settings})
	}
	return out
}
