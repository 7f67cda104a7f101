package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alfreds-toolbox/infrastructure/configuration"
	"alfreds-toolbox/infrastructure/logger"
	"alfreds-toolbox/server"

	"golang.org/x/sync/errgroup"
)

// warmUpInterval controls how often stale analytics ranges are re-queued.
const warmUpInterval = 15 * time.Minute

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// OS env still has precedence over the files
	if loaded := configuration.LoadEnvFromFile("config.env", ".env"); loaded > 0 {
		logger.GetLogger().WithField("variables", loaded).Info("Loaded env files from working directory")
		configuration.Reload()
	}
	app := configuration.C.App
	if app.SecretKey == "" {
		logger.GetLogger().Warn("SECRET_KEY is empty - nonces and admin tokens will be rejected")
	}

	container, err := server.NewContainer(ctx, configuration.C)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Initialization failed")
		os.Exit(1)
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing backends")
		}
	}()

	g.Go(func() error {
		return container.RunPreloader(ctx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(warmUpInterval)
		defer ticker.Stop()
		container.Analytics.MaybePreloadRanges(ctx)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				container.Analytics.MaybePreloadRanges(ctx)
			}
		}
	})

	router := container.Router()

	port := app.Port
	logger.GetLogger().WithFields(map[string]interface{}{"port": port, "tls": app.TLSEnabled}).Info("Starting application")
	httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			}
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.GetLogger().WithField("error", err).Error("HTTP server shutdown failed")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		_ = container.Close()
		os.Exit(2)
	}
}
