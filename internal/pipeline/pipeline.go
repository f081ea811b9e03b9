// Package pipeline is the decision core: it validates and prepares an
// upload, consults the result cache, drives the engines in priority
// order with fallback, postprocesses the text, and writes the result
// back to the cache. The batch scheduler in parallel.go fans this
// pipeline out over multiple uploads.
package pipeline

import (
	"context"
	"time"

	"github.com/pictext/pictext/internal/cache"
	"github.com/pictext/pictext/internal/config"
	"github.com/pictext/pictext/internal/engine"
	"github.com/pictext/pictext/internal/preprocess"
	"github.com/pictext/pictext/internal/validate"
)

// Pipeline owns the extraction flow. Engines and cache are injected so
// tests can substitute fakes; either engine slot may be nil when that
// backend is disabled, and a nil store disables caching entirely.
type Pipeline struct {
	primary   engine.Engine
	secondary engine.Engine
	store     cache.Store

	limits validate.Limits
	prep   preprocess.Options

	primaryTimeout   time.Duration
	secondaryTimeout time.Duration

	maxBatchSize int
	workers      int
}

// New assembles a pipeline from configuration and the injected
// backends.
func New(cfg *config.Config, primary, secondary engine.Engine, store cache.Store) *Pipeline {
	return &Pipeline{
		primary:   primary,
		secondary: secondary,
		store:     store,
		limits: validate.Limits{
			MaxFileSize: cfg.Upload.MaxFileSize,
			MinFileSize: cfg.Upload.MinFileSize,
		},
		prep: preprocess.Options{
			MinDimension: cfg.Preprocess.MinDimension,
			MaxWidth:     cfg.Preprocess.MaxWidth,
		},
		primaryTimeout:   cfg.VisionTimeout(),
		secondaryTimeout: cfg.TesseractTimeout(),
		maxBatchSize:     cfg.Upload.MaxBatchSize,
		workers:          cfg.Batch.Workers,
	}
}

// Close releases engine and cache resources.
func (p *Pipeline) Close() error {
	var firstErr error
	type closer interface{ Close() error }
	for _, c := range []interface{}{p.primary, p.secondary} {
		if cl, ok := c.(closer); ok {
			if err := cl.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if p.store != nil {
		if err := p.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CacheStats reports cache counters, or ok=false when caching is
// disabled.
func (p *Pipeline) CacheStats(ctx context.Context) (cache.Stats, bool) {
	if p.store == nil {
		return cache.Stats{}, false
	}
	return p.store.Stats(ctx), true
}

// ClearCache drops every cached result.
func (p *Pipeline) ClearCache(ctx context.Context) error {
	if p.store == nil {
		return nil
	}
	return p.store.Clear(ctx)
}
