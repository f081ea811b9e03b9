// Package cache stores computed OCR results keyed by content
// fingerprint. Two interchangeable backends exist: an in-process
// LRU with per-entry expiry, and a namespaced Redis store. Both hold
// opaque serialized values so a backend swap never changes semantics.
package cache

import (
	"context"
	"time"
)

// Store is the backend contract. Get treats any backend fault as a
// miss, so a degraded cache slows requests down but never fails them.
type Store interface {
	// Get returns the value for key, or ok=false on miss or backend error.
	Get(ctx context.Context, key string) (value []byte, ok bool)
	// Put stores value under key with the store's configured TTL.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes one key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Clear removes every entry this store owns. For shared backends
	// that means only keys inside the store's namespace.
	Clear(ctx context.Context) error
	// Stats reports counters and configuration for the stats endpoint.
	Stats(ctx context.Context) Stats
	// Close releases backend connections.
	Close() error
}

// Stats is the shape returned by the cache stats endpoint.
type Stats struct {
	Backend        string  `json:"backend"`
	Size           int     `json:"size"`
	MaxSize        int     `json:"max_size"`
	TTLSeconds     int     `json:"ttl_seconds"`
	Hits           int64   `json:"hits"`
	Misses         int64   `json:"misses"`
	HitRatePercent float64 `json:"hit_rate_percent"`
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Config selects and tunes a backend.
type Config struct {
	TTL        time.Duration
	MaxEntries int    // memory backend only
	Namespace  string // redis backend only
}
