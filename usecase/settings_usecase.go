package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"
	"alfreds-toolbox/infrastructure/logger"
)

// SpotifyPodcastWidget is the only widget the toolbox ships.
var SpotifyPodcastWidget = model.Widget{
	ID:          "spotify_podcast",
	Name:        "Spotify Podcast",
	Description: "Zeigt Episoden eines Spotify Podcasts mit Verlinkung an",
}

// AvailableWidgets lists every widget that can be activated.
var AvailableWidgets = []model.Widget{SpotifyPodcastWidget}

type sanitizer func(raw string) (string, error)

type optionDef struct {
	name     string
	secret   bool
	sanitize sanitizer
}

// optionDefs are the declared options; form aliases map onto them in SaveSettings.
var optionDefs = []optionDef{
	{name: model.OptionLicenseKey, secret: true, sanitize: sanitizeText},
	{name: model.OptionSpotifyClientID, sanitize: sanitizeText},
	{name: model.OptionSpotifyClientSecret, secret: true, sanitize: sanitizeText},
	{name: model.OptionSpotifyCacheDuration, sanitize: sanitizeCacheDuration},
	{name: model.OptionGAPropertyID, sanitize: sanitizeDigits},
	{name: model.OptionActiveWidgets, sanitize: sanitizeActiveWidgets},
	{name: model.OptionTutorialVideos, sanitize: sanitizeTutorialVideos},
}

var formAliases = map[string]string{
	"tutorial_videos": model.OptionTutorialVideos,
	"active_widgets":  model.OptionActiveWidgets,
}

type ISettingsUsecase interface {
	// SaveSettings stores every known field and returns the option names written.
	SaveSettings(ctx context.Context, fields map[string]string) ([]string, error)
	GetSettings(ctx context.Context) (*model.Settings, error)
	Widgets(ctx context.Context) ([]model.Widget, []string)
	IsWidgetActive(ctx context.Context, id string) bool
}

type SettingsUsecase struct {
	options repository.IOptionStore
	license ILicenseUsecase
}

func NewSettingsUsecase(options repository.IOptionStore, license ILicenseUsecase) ISettingsUsecase {
	return &SettingsUsecase{options: options, license: license}
}

func lookupDef(name string) (optionDef, bool) {
	if alias, ok := formAliases[name]; ok {
		name = alias
	}
	for _, def := range optionDefs {
		if def.name == name {
			return def, true
		}
	}
	return optionDef{}, false
}

func (u *SettingsUsecase) SaveSettings(ctx context.Context, fields map[string]string) ([]string, error) {
	sanitized := make(map[string]string)
	for field, raw := range fields {
		def, ok := lookupDef(field)
		if !ok {
			logger.GetLogger().WithField("field", field).Debug("Ignoring unknown setting")
			continue
		}
		if def.secret && raw != "" && raw == mask(u.option(ctx, def.name)) {
			continue
		}
		value, err := def.sanitize(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", model.ErrInvalidInput, field, err)
		}
		sanitized[def.name] = value
	}

	saved := make([]string, 0, len(sanitized))
	for _, def := range optionDefs {
		value, ok := sanitized[def.name]
		if !ok {
			continue
		}
		if err := u.options.UpdateOption(ctx, def.name, value); err != nil {
			logger.GetLogger().WithField("error", err).WithField("option", def.name).Error("Error saving option")
			return saved, err
		}
		saved = append(saved, def.name)
	}
	if _, ok := sanitized[model.OptionLicenseKey]; ok && u.license != nil {
		u.license.ClearCache(ctx)
	}
	return saved, nil
}

func (u *SettingsUsecase) GetSettings(ctx context.Context) (*model.Settings, error) {
	values := make(map[string]string, len(optionDefs))
	for _, def := range optionDefs {
		value, _, err := u.options.GetOption(ctx, def.name)
		if err != nil {
			return nil, err
		}
		values[def.name] = value
	}

	settings := &model.Settings{
		LicenseKey:           mask(values[model.OptionLicenseKey]),
		SpotifyClientID:      values[model.OptionSpotifyClientID],
		SpotifyClientSecret:  mask(values[model.OptionSpotifyClientSecret]),
		SpotifyCacheDuration: model.DefaultSpotifyCacheDuration,
		GAPropertyID:         values[model.OptionGAPropertyID],
		ActiveWidgets:        []string{},
		TutorialVideos:       []model.TutorialVideo{},
	}
	if n, err := strconv.Atoi(values[model.OptionSpotifyCacheDuration]); err == nil && slices.Contains(model.SpotifyCacheDurations, n) {
		settings.SpotifyCacheDuration = n
	}
	if raw := values[model.OptionActiveWidgets]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &settings.ActiveWidgets)
	}
	if raw := values[model.OptionTutorialVideos]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &settings.TutorialVideos)
	}
	return settings, nil
}

func (u *SettingsUsecase) Widgets(ctx context.Context) ([]model.Widget, []string) {
	active := []string{}
	if raw := u.option(ctx, model.OptionActiveWidgets); raw != "" {
		_ = json.Unmarshal([]byte(raw), &active)
	}
	return AvailableWidgets, active
}

func (u *SettingsUsecase) IsWidgetActive(ctx context.Context, id string) bool {
	_, active := u.Widgets(ctx)
	return slices.Contains(active, id)
}

func (u *SettingsUsecase) option(ctx context.Context, name string) string {
	value, _, err := u.options.GetOption(ctx, name)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("option", name).Error("Error reading option")
	}
	return value
}

// mask keeps the last four characters of a secret visible.
func mask(secret string) string {
	if secret == "" {
		return ""
	}
	runes := []rune(secret)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}

func sanitizeText(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw)
	return strings.TrimSpace(cleaned), nil
}

func sanitizeDigits(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// sanitizeCacheDuration applies absint and falls back to the default outside the whitelist.
func sanitizeCacheDuration(raw string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = 0
	}
	if n < 0 {
		n = -n
	}
	if !slices.Contains(model.SpotifyCacheDurations, n) {
		n = model.DefaultSpotifyCacheDuration
	}
	return strconv.Itoa(n), nil
}

func sanitizeActiveWidgets(raw string) (string, error) {
	var ids []string
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return "", err
		}
	}
	known := make([]string, 0, len(ids))
	for _, id := range ids {
		if slices.ContainsFunc(AvailableWidgets, func(w model.Widget) bool { return w.ID == id }) && !slices.Contains(known, id) {
			known = append(known, id)
		}
	}
	encoded, err := json.Marshal(known)
	return string(encoded), err
}

func sanitizeTutorialVideos(raw string) (string, error) {
	var videos []model.TutorialVideo
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &videos); err != nil {
			return "", err
		}
	}
	kept := make([]model.TutorialVideo, 0, len(videos))
	for _, video := range videos {
		title, _ := sanitizeText(video.Title)
		loomID, _ := sanitizeText(video.LoomID)
		if title == "" && loomID == "" {
			continue
		}
		kept = append(kept, model.TutorialVideo{Title: title, LoomID: loomID})
	}
	encoded, err := json.Marshal(kept)
	return string(encoded), err
}
