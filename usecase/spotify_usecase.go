package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"
	"alfreds-toolbox/infrastructure/clients/spotify"
	"alfreds-toolbox/infrastructure/logger"

	"golang.org/x/sync/singleflight"
)

const episodesKeyPrefix = "spotify_episodes_"

type ISpotifyUsecase interface {
	GetShowEpisodes(ctx context.Context, showID string, limit, offset int) ([]model.Episode, error)
	// ClearCache drops one show's pages, or every show's when showID is empty.
	ClearCache(ctx context.Context, showID string) (int, error)
}

type SpotifyUsecase struct {
	api         repository.ISpotifyAPI
	credentials ICredentialProvider
	options     repository.IOptionStore
	cache       repository.ITransientCache
	group       singleflight.Group
}

func NewSpotifyUsecase(api repository.ISpotifyAPI, credentials ICredentialProvider, options repository.IOptionStore, cache repository.ITransientCache) ISpotifyUsecase {
	return &SpotifyUsecase{api: api, credentials: credentials, options: options, cache: cache}
}

func episodesKey(showID string, limit, offset int) string {
	return fmt.Sprintf("%s%s_%d_%d", episodesKeyPrefix, showID, limit, offset)
}

func clampPage(limit, offset int) (int, int) {
	limit = max(1, min(limit, spotify.MaxPageSize))
	return limit, max(0, offset)
}

func (u *SpotifyUsecase) GetShowEpisodes(ctx context.Context, showID string, limit, offset int) ([]model.Episode, error) {
	if showID == "" {
		return nil, fmt.Errorf("%w: show id is required", model.ErrInvalidInput)
	}
	limit, offset = clampPage(limit, offset)
	key := episodesKey(showID, limit, offset)

	if episodes, ok := u.cached(ctx, key); ok {
		return episodes, nil
	}

	v, err, _ := u.group.Do(key, func() (interface{}, error) {
		ctx, cancel := detached(ctx)
		defer cancel()
		if episodes, ok := u.cached(ctx, key); ok {
			return episodes, nil
		}
		creds, err := u.credentials.SpotifyCredentials(ctx)
		if err != nil {
			return nil, err
		}
		page, err := u.api.GetShowEpisodes(ctx, creds, showID, limit, offset)
		if err != nil {
			logger.GetLogger().WithField("error", err).WithField("show", showID).Error("Error fetching Spotify episodes")
			return nil, err
		}
		episodes := page.Episodes()
		if len(episodes) > 0 {
			u.store(ctx, key, episodes)
		}
		return episodes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Episode), nil
}

func (u *SpotifyUsecase) ClearCache(ctx context.Context, showID string) (int, error) {
	prefix := episodesKeyPrefix
	if showID != "" {
		prefix += showID + "_"
	}
	removed, err := u.cache.DeletePrefix(ctx, prefix)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error clearing Spotify cache")
		return 0, err
	}
	logger.GetLogger().WithField("show", showID).WithField("removed", removed).Info("Spotify cache cleared")
	return removed, nil
}

func (u *SpotifyUsecase) cached(ctx context.Context, key string) ([]model.Episode, bool) {
	raw, ok, err := u.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var episodes []model.Episode
	if err := json.Unmarshal(raw, &episodes); err != nil || len(episodes) == 0 {
		return nil, false
	}
	return episodes, true
}

func (u *SpotifyUsecase) store(ctx context.Context, key string, episodes []model.Episode) {
	raw, err := json.Marshal(episodes)
	if err != nil {
		return
	}
	if err := u.cache.Set(ctx, key, raw, u.cacheDuration(ctx)); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Caching Spotify episodes failed")
	}
}

func (u *SpotifyUsecase) cacheDuration(ctx context.Context) time.Duration {
	seconds := model.DefaultSpotifyCacheDuration
	if raw, ok, err := u.options.GetOption(ctx, model.OptionSpotifyCacheDuration); err == nil && ok {
		if n, convErr := strconv.Atoi(raw); convErr == nil && slices.Contains(model.SpotifyCacheDurations, n) {
			seconds = n
		}
	}
	return time.Duration(seconds) * time.Second
}
