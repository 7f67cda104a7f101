package usecase

import (
	"context"
	"testing"

	"alfreds-toolbox/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveSettings_SanitizesFields(t *testing.T) {
	options := newOptionStore(nil)
	spy := &licenseCacheSpy{}
	uc := NewSettingsUsecase(options, spy)

	saved, err := uc.SaveSettings(context.Background(), map[string]string{
		model.OptionSpotifyClientID:      "  client-id\n",
		model.OptionSpotifyCacheDuration: "-7200",
		model.OptionGAPropertyID:         "properties/123-456",
		model.OptionActiveWidgets:        `["spotify_podcast","ghost_widget","spotify_podcast"]`,
		"tutorial_videos":                `[{"title":"Intro","loom_id":"abc"},{"title":"","loom_id":""},{"title":"","loom_id":"xyz"}]`,
		"some_unknown_field":             "ignored",
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		model.OptionSpotifyClientID, model.OptionSpotifyCacheDuration, model.OptionGAPropertyID,
		model.OptionActiveWidgets, model.OptionTutorialVideos,
	}, saved)
	assert.Equal(t, "client-id", options.values[model.OptionSpotifyClientID])
	assert.Equal(t, "7200", options.values[model.OptionSpotifyCacheDuration])
	assert.Equal(t, "123456", options.values[model.OptionGAPropertyID])
	assert.Equal(t, `["spotify_podcast"]`, options.values[model.OptionActiveWidgets])
	assert.JSONEq(t, `[{"title":"Intro","loom_id":"abc"},{"title":"","loom_id":"xyz"}]`, options.values[model.OptionTutorialVideos])
	assert.NotContains(t, options.values, "some_unknown_field")
	assert.Zero(t, spy.cleared)
}

func TestSaveSettings_CacheDurationOutsideWhitelist(t *testing.T) {
	options := newOptionStore(nil)
	_, err := NewSettingsUsecase(options, nil).SaveSettings(context.Background(), map[string]string{
		model.OptionSpotifyCacheDuration: "42",
	})
	require.NoError(t, err)
	assert.Equal(t, "3600", options.values[model.OptionSpotifyCacheDuration])
}

func TestSaveSettings_InvalidJSONRejected(t *testing.T) {
	options := newOptionStore(map[string]string{model.OptionGAPropertyID: "1"})
	_, err := NewSettingsUsecase(options, nil).SaveSettings(context.Background(), map[string]string{
		model.OptionGAPropertyID: "2",
		"tutorial_videos":        `[{"title":`,
	})

	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Equal(t, "1", options.values[model.OptionGAPropertyID])
}

func TestSaveSettings_LicenseKeyClearsCredentialCache(t *testing.T) {
	options := newOptionStore(nil)
	spy := &licenseCacheSpy{}

	_, err := NewSettingsUsecase(options, spy).SaveSettings(context.Background(), map[string]string{
		model.OptionLicenseKey: "NEW-KEY-1234",
	})

	require.NoError(t, err)
	assert.Equal(t, "NEW-KEY-1234", options.values[model.OptionLicenseKey])
	assert.Equal(t, 1, spy.cleared)
}

func TestSaveSettings_MaskedSecretKeepsStoredValue(t *testing.T) {
	options := newOptionStore(map[string]string{model.OptionSpotifyClientSecret: "supersecret"})
	uc := NewSettingsUsecase(options, nil)

	current, err := uc.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "*******cret", current.SpotifyClientSecret)

	saved, err := uc.SaveSettings(context.Background(), map[string]string{model.OptionSpotifyClientSecret: current.SpotifyClientSecret})
	require.NoError(t, err)
	assert.Empty(t, saved)
	assert.Equal(t, "supersecret", options.values[model.OptionSpotifyClientSecret])
}

func TestGetSettings_Defaults(t *testing.T) {
	settings, err := NewSettingsUsecase(newOptionStore(nil), nil).GetSettings(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.DefaultSpotifyCacheDuration, settings.SpotifyCacheDuration)
	assert.Empty(t, settings.ActiveWidgets)
	assert.NotNil(t, settings.TutorialVideos)
}

func TestWidgets(t *testing.T) {
	options := newOptionStore(map[string]string{model.OptionActiveWidgets: `["spotify_podcast"]`})
	uc := NewSettingsUsecase(options, nil)

	available, active := uc.Widgets(context.Background())

	require.Len(t, available, 1)
	assert.Equal(t, "Spotify Podcast", available[0].Name)
	assert.Equal(t, []string{"spotify_podcast"}, active)
	assert.True(t, uc.IsWidgetActive(context.Background(), "spotify_podcast"))
}
