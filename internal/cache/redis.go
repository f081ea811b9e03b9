package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the networked backend. Keys are prefixed with a namespace so
// Clear only ever touches this application's entries, never the whole
// database.
type Redis struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
	hits      atomic.Int64
	misses    atomic.Int64
}

var _ Store = (*Redis)(nil)

// RedisOptions carries the connection settings for NewRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

const defaultNamespace = "pictext:ocr"

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(ctx context.Context, opts RedisOptions, cfg Config) (*Redis, error) {
	ro := &redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
	if opts.TLS {
		ro.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(ro)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	ns := cfg.Namespace
	if ns == "" {
		ns = defaultNamespace
	}
	return &Redis{
		client:    client,
		namespace: ns,
		ttl:       cfg.TTL,
	}, nil
}

func (r *Redis) key(fingerprint string) string {
	return r.namespace + ":" + fingerprint
}

// Get returns the cached value, treating any backend error as a miss so
// a flapping Redis degrades to recomputation rather than failures.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache get failed, treating as miss", "error", err)
		}
		r.misses.Add(1)
		return nil, false
	}
	r.hits.Add(1)
	return value, true
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Clear scans for keys under the namespace and deletes them in batches.
// A SCAN-based sweep keeps Clear safe on shared Redis instances.
func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.namespace+":*", 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("cache clear: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache clear scan: %w", err)
	}
	if len(batch) > 0 {
		if err := r.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("cache clear: %w", err)
		}
	}
	return nil
}

func (r *Redis) Stats(ctx context.Context) Stats {
	hits := r.hits.Load()
	misses := r.misses.Load()
	stats := Stats{
		Backend:        "redis",
		TTLSeconds:     int(r.ttl.Seconds()),
		Hits:           hits,
		Misses:         misses,
		HitRatePercent: hitRate(hits, misses),
	}

	// Size is a namespace key count; a scan failure leaves it at zero
	// rather than failing the stats call.
	iter := r.client.Scan(ctx, 0, r.namespace+":*", 100).Iterator()
	for iter.Next(ctx) {
		stats.Size++
	}
	if err := iter.Err(); err != nil {
		slog.Warn("cache stats scan failed", "error", err)
	}
	return stats
}

func (r *Redis) Close() error {
	return r.client.Close()
}
