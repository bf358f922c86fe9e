package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/memory"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(config.Load(), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	res := cli.InitBackend(context.Background(), logger, cfg)
	if res.Cleanup != nil {
		defer func() {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}()
	}
	be := res.Backend

	trends, err := cli.InitTrendCache(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize trend cache", log.FieldError, err, "cache_backend", cfg.CacheBackend)
		os.Exit(1)
	}
	defer trends.Close()

	publisher, closePublisher, err := cli.InitPublisher(logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize event publisher", log.FieldError, err)
		os.Exit(1)
	}
	defer closePublisher()

	deps := apphttp.Deps{
		Auth:         services.NewAuthService(be.Identity, logger),
		Dashboard:    services.NewDashboardService(be.Store, trends.Store, cfg.PageSize, logger),
		Transactions: services.NewTransactionService(be.Store, publisher, trends.Store, logger),
		Profile:      services.NewProfileService(be.Identity, be.Avatars, logger),
		LocalAvatars: be.LocalAvatars,
		Health:       be.Health,
		Categories:   memory.Categories(cfg.CategoriesFile),
	}
	srv := apphttp.NewServer(":"+cfg.Port, deps, apphttp.Options{
		SecureCookie: cfg.SessionCookieSecure,
		RateLimit:    ratelimit.DefaultConfig(),
		Logger:       logger,
	})

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"cache_backend", cfg.CacheBackend,
		"categories", len(deps.Categories))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	<-done
	logger.Info("Server stopped gracefully")
}
