// Package cli holds the start-up steps shared by the fintrack binaries.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/ports"
	"fintrack/internal/services"
)

const (
	trendCacheSize      = 1000
	trendCacheNamespace = "fintrack:trends"
	cacheSweepInterval  = time.Minute
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	lc := log.DefaultConfig()
	lc.Component = component
	if cfg != nil {
		lc.Level = log.ParseLevel(cfg.LogLevel)
		lc.Format = cfg.LogFormat
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and exits on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend creates the configured data backend or exits.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend",
			log.FieldError, err,
			"backend", cfg.DataBackend)
		os.Exit(1)
	}
	return res
}

// TrendCache is the trend-summary cache plus what it takes to shut it down.
type TrendCache struct {
	Store   cache.Store[services.Totals]
	sweeper *cache.Sweeper
	closeFn func() error
}

// Close stops background sweeps and releases connections.
func (c *TrendCache) Close() error {
	if c.sweeper != nil {
		c.sweeper.Stop()
	}
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

// InitTrendCache returns the in-process LRU or a Redis-backed store,
// depending on CACHE_BACKEND, guarded against writes made stale by a
// concurrent invalidation.
func InitTrendCache(ctx context.Context, logger *log.Logger, cfg *config.Config) (*TrendCache, error) {
	logger = logger.WithComponent(log.ComponentCache)
	if cfg.CacheBackend == "redis" {
		client, err := cache.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info("Using redis trend cache", "ttl", cfg.CacheTTL)
		return &TrendCache{
			Store:   cache.NewGuarded[services.Totals](cache.NewRedis[services.Totals](client, trendCacheNamespace, cfg.CacheTTL)),
			closeFn: client.Close,
		}, nil
	}

	local := cache.NewLocal[services.Totals](trendCacheSize, cfg.CacheTTL)
	sweeper := cache.NewSweeper(cacheSweepInterval, func(removed int) {
		logger.Debug("Expired trend entries removed", "removed", removed)
	}, local)
	sweeper.Start()
	logger.Info("Using in-memory trend cache", "ttl", cfg.CacheTTL, "size", trendCacheSize)
	return &TrendCache{Store: cache.NewGuarded[services.Totals](local), sweeper: sweeper}, nil
}

// InitPublisher connects to the broker when AMQP_URL is set and falls back to
// a no-op publisher otherwise. The returned close function is never nil.
func InitPublisher(logger *log.Logger, cfg *config.Config) (ports.EventPublisher, func() error, error) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled, transaction events will not be published")
		return amqp.NewNoopPublisher(logger), func() error { return nil }, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("amqp client: %w", err)
	}
	logger.Info("AMQP publisher connected",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client, client.Close, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs with a context bounded by timeout before done is closed.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}
