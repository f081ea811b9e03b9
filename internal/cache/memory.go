package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is the in-process backend: a bounded LRU where entries also
// expire after the configured TTL. Suitable for single-instance
// deployments and as the fallback when Redis is not configured.
type Memory struct {
	lru    *expirable.LRU[string, []byte]
	ttl    time.Duration
	max    int
	hits   atomic.Int64
	misses atomic.Int64
}

var _ Store = (*Memory)(nil)

// NewMemory builds an in-process store holding at most maxEntries
// values, each expiring ttl after insertion.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &Memory{
		lru: expirable.NewLRU[string, []byte](maxEntries, nil, ttl),
		ttl: ttl,
		max: maxEntries,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	value, ok := m.lru.Get(key)
	if !ok {
		m.misses.Add(1)
		return nil, false
	}
	m.hits.Add(1)
	return value, true
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.lru.Add(key, value)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.lru.Purge()
	return nil
}

func (m *Memory) Stats(context.Context) Stats {
	hits := m.hits.Load()
	misses := m.misses.Load()
	return Stats{
		Backend:        "memory",
		Size:           m.lru.Len(),
		MaxSize:        m.max,
		TTLSeconds:     int(m.ttl.Seconds()),
		Hits:           hits,
		Misses:         misses,
		HitRatePercent: hitRate(hits, misses),
	}
}

func (m *Memory) Close() error { return nil }
