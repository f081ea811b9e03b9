package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pictext/pictext/internal/cache"
	"github.com/pictext/pictext/internal/config"
	"github.com/pictext/pictext/internal/engine"
	"github.com/pictext/pictext/internal/pipeline"
)

// buildPipeline assembles engines and cache backend from configuration.
// Vision failures at startup are not fatal when Tesseract remains
// available; cache failures disable caching rather than aborting.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var primary engine.Engine
	if cfg.Engines.Vision.Enabled {
		vision, err := engine.NewVision(ctx, engine.VisionConfig{
			CredentialsJSON: cfg.Engines.Vision.CredentialsJSON,
			CredentialsFile: cfg.Engines.Vision.CredentialsFile,
		})
		if err != nil {
			slog.Warn("Cloud Vision unavailable, falling back to Tesseract only", "error", err)
		} else {
			primary = vision
		}
	}
	secondary := engine.NewTesseract(cfg.Engines.Tesseract.Language)

	store := buildCache(ctx, cfg)

	// Tesseract stays in the secondary slot even when it is the only
	// engine, so it always runs under its own timeout.
	return pipeline.New(cfg, primary, secondary, store), nil
}

// buildCache selects the cache backend, or returns nil when caching is
// disabled or the backend cannot be reached.
func buildCache(ctx context.Context, cfg *config.Config) cache.Store {
	if !cfg.Cache.Enabled {
		return nil
	}

	switch cfg.Cache.Backend {
	case "redis":
		store, err := cache.NewRedis(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			TLS:      cfg.Cache.Redis.TLS,
		}, cache.Config{
			TTL:       cfg.CacheTTL(),
			Namespace: cfg.Cache.Namespace,
		})
		if err != nil {
			slog.Warn("Redis unavailable, caching disabled", "addr", cfg.Cache.Redis.Addr, "error", err)
			return nil
		}
		return store
	default:
		return cache.NewMemory(cfg.Cache.MaxEntries, cfg.CacheTTL())
	}
}
