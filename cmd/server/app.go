package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lmdah61/Japanese-Text-Server/internal/config"
	"github.com/lmdah61/Japanese-Text-Server/internal/generation"
	"github.com/lmdah61/Japanese-Text-Server/internal/platform/gemini"
	"github.com/lmdah61/Japanese-Text-Server/internal/platform/logger"
	"github.com/lmdah61/Japanese-Text-Server/internal/ratelimit"
)

// application holds the initialized dependencies for the server. The rate
// limit store is owned here and injected into the middleware, scoped to
// process start/stop rather than hidden in package state.
type application struct {
	config         *config.Config
	logger         *slog.Logger
	generator      generation.Generator
	rateLimitStore ratelimit.Store
	redisClient    *redis.Client // nil when the in-memory store is used
}

// newApplication loads configuration and wires the application components.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"model", cfg.LLM.ModelName,
		"ratelimit_per_minute", cfg.RateLimit.PerMinute,
		"ratelimit_per_hour", cfg.RateLimit.PerHour,
		"ratelimit_backend", rateLimitBackend(cfg))

	generator, err := gemini.NewGenerator(ctx, log, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini generator: %w", err)
	}

	app := &application{
		config:    cfg,
		logger:    log,
		generator: generator,
	}

	if cfg.RateLimit.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RateLimit.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid ratelimit redis URL: %w", err)
		}
		app.redisClient = redis.NewClient(opts)
		app.rateLimitStore = ratelimit.NewRedisStore(app.redisClient, nil)
	} else {
		app.rateLimitStore = ratelimit.NewMemoryStore(nil)
	}

	return app, nil
}

// rateLimitWindows converts the configured caps into limiter windows,
// tightest first.
func (app *application) rateLimitWindows() []ratelimit.Window {
	return []ratelimit.Window{
		{Limit: uint64(app.config.RateLimit.PerMinute), Duration: time.Minute},
		{Limit: uint64(app.config.RateLimit.PerHour), Duration: time.Hour},
	}
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("failed to close redis client", "error", err)
		}
	}
}

func rateLimitBackend(cfg *config.Config) string {
	if cfg.RateLimit.RedisURL != "" {
		return "redis"
	}
	return "memory"
}
