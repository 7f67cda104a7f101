package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"
	"alfreds-toolbox/infrastructure/cache"
	"alfreds-toolbox/infrastructure/clients/googleanalytics"
	"alfreds-toolbox/infrastructure/clients/license"
	"alfreds-toolbox/infrastructure/clients/spotify"
	"alfreds-toolbox/infrastructure/clients/webhook"
	"alfreds-toolbox/infrastructure/configuration"
	"alfreds-toolbox/infrastructure/icons"
	"alfreds-toolbox/infrastructure/logger"
	"alfreds-toolbox/infrastructure/persistence"
	"alfreds-toolbox/infrastructure/pubsub"
	"alfreds-toolbox/infrastructure/security"
	"alfreds-toolbox/infrastructure/worker"
	httpHandler "alfreds-toolbox/interfaces/http"
	"alfreds-toolbox/usecase"

	"github.com/gin-gonic/gin"
)

const preloadBuffer = 16

// PreloadRunner is a preload queue that also consumes its own jobs.
type PreloadRunner interface {
	repository.IPreloadQueue
	Run(ctx context.Context, handle func(context.Context, model.RangeName)) error
}

// Container holds the wired stores, usecases and background runners.
type Container struct {
	Config     configuration.Config
	Options    repository.IOptionStore
	Transients repository.ITransientCache
	License    usecase.ILicenseUsecase
	Spotify    usecase.ISpotifyUsecase
	Analytics  usecase.IAnalyticsUsecase
	Settings   usecase.ISettingsUsecase
	Newsletter usecase.INewsletterUsecase
	Widgets    usecase.IWidgetRenderer
	Preloader  PreloadRunner

	closers []io.Closer
}

// NewContainer opens the option store and the optional Redis and Pub/Sub
// backends, then builds every usecase on top of them. Redis and Pub/Sub
// failures degrade to the in-process implementations.
func NewContainer(ctx context.Context, cfg configuration.Config) (*Container, error) {
	options, closer, err := persistence.OpenOptionStore(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening option store: %w", err)
	}
	c := &Container{Config: cfg, Options: options}
	c.closers = append(c.closers, closer)

	if err := seedLicenseKey(ctx, options, cfg.License.Key); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Could not seed license key from configuration")
	}

	c.Transients = c.openTransients(ctx)
	c.Preloader = c.openPreloader(ctx)

	secure := security.NewSecureStorage(options, cfg.Security)
	c.License = usecase.NewLicenseUsecase(
		license.NewLicenseClient(cfg.License.APIURL, nil),
		secure,
		options,
		c.Transients,
		cfg.App.SiteURL,
	)
	credentials := usecase.NewCredentialProvider(options, c.License, usecase.CredentialDefaults{
		SpotifyClientID:       cfg.Spotify.ClientID,
		SpotifyClientSecret:   cfg.Spotify.ClientSecret,
		ServiceAccountKeyFile: cfg.Analytics.ServiceAccountFile,
	})

	spotifyClient := spotify.NewSpotifyClient(spotify.Config{
		TokenURL:   cfg.Spotify.TokenURL,
		APIBaseURL: cfg.Spotify.APIBaseURL,
		Market:     cfg.Spotify.Market,
	}, nil, c.Transients)
	c.Spotify = usecase.NewSpotifyUsecase(spotifyClient, credentials, options, c.Transients)

	c.Analytics = usecase.NewAnalyticsUsecase(
		googleanalytics.NewAnalyticsClient(cfg.Analytics.Endpoint, nil, c.Transients),
		credentials,
		options,
		c.Transients,
		c.Preloader,
		icons.NewLibrary(cfg.Analytics.IconDir),
		usecase.NewClock(cfg.App.Timezone),
		cfg.Analytics.PropertyID,
	)

	c.Settings = usecase.NewSettingsUsecase(options, c.License)
	c.Newsletter = usecase.NewNewsletterUsecase(
		webhook.NewNewsletterWebhook(cfg.Newsletter.WebhookURL, nil),
		cfg.App.SiteURL,
		cfg.Newsletter.Language,
	)
	c.Widgets = usecase.NewWidgetRenderer(c.Spotify)

	return c, nil
}

func (c *Container) openTransients(ctx context.Context) repository.ITransientCache {
	redisCfg := c.Config.RedisClient
	if redisCfg.Host == "" {
		logger.GetLogger().Info("Redis not configured - using in-memory transients")
		return cache.NewMemoryCache()
	}
	client, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", redisCfg.Host, redisCfg.Port),
		redisCfg.Username,
		redisCfg.Password,
		redisCfg.DB,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - using in-memory transients")
		return cache.NewMemoryCache()
	}
	c.closers = append(c.closers, client)
	logger.GetLogger().Info("Redis client initialized successfully.")
	return cache.NewRedisTransientCache(client, redisCfg.KeyPrefix)
}

func (c *Container) openPreloader(ctx context.Context) PreloadRunner {
	preload := c.Config.Preload
	if preload.Backend != "pubsub" {
		return worker.NewPreloadWorker(preloadBuffer)
	}
	client, err := pubsub.NewPubSub(ctx, c.Config.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Pub/Sub not available - preloading inline")
		return worker.NewPreloadWorker(preloadBuffer)
	}
	c.closers = append(c.closers, client)
	return pubsub.NewPreloadPubSub(client, preload.Topic, preload.Subscription)
}

// Router builds the HTTP surface on top of the container's usecases.
func (c *Container) Router() *gin.Engine {
	secret := c.Config.App.SecretKey
	return InitiateRouter(
		secret,
		c.Config.App.AllowOrigins,
		httpHandler.NewAjaxHandler(secret, c.Spotify, c.Analytics, c.Settings, c.License, c.Newsletter, c.Widgets),
		httpHandler.NewAdminHandler(secret, c.Settings, c.License, c.Analytics),
		httpHandler.NewWidgetHandler(secret, c.Widgets, c.Settings),
		httpHandler.NewHealthHandler(),
	)
}

// RunPreloader consumes warm-up jobs until ctx is cancelled.
func (c *Container) RunPreloader(ctx context.Context) error {
	return c.Preloader.Run(ctx, c.Analytics.PreloadRange)
}

// Close releases backends in reverse order of opening.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// seedLicenseKey copies a configured license key into the option store
// unless the dashboard already saved one.
func seedLicenseKey(ctx context.Context, options repository.IOptionStore, key string) error {
	if key == "" {
		return nil
	}
	current, ok, err := options.GetOption(ctx, model.OptionLicenseKey)
	if err != nil {
		return err
	}
	if ok && current != "" {
		return nil
	}
	return options.UpdateOption(ctx, model.OptionLicenseKey, key)
}
