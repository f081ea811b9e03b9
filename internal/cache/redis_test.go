package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedis_UnreachableAddr(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedis(ctx, RedisOptions{Addr: "127.0.0.1:1"}, Config{TTL: time.Minute})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

// deadRedis builds a store whose client points at a closed port, for
// exercising degraded-mode behavior without a live server.
func deadRedis() *Redis {
	return &Redis{
		client:    redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}),
		namespace: "test:ocr",
		ttl:       time.Minute,
	}
}

func TestRedis_GetDegradesToMiss(t *testing.T) {
	store := deadRedis()
	defer store.Close()

	_, ok := store.Get(context.Background(), "fp")
	assert.False(t, ok)
	assert.Equal(t, int64(1), store.Stats(context.Background()).Misses)
}

func TestRedis_PutSurfacesError(t *testing.T) {
	store := deadRedis()
	defer store.Close()

	err := store.Put(context.Background(), "fp", []byte("v"))
	assert.Error(t, err)
}

func TestRedis_KeyNamespacing(t *testing.T) {
	store := deadRedis()
	defer store.Close()

	assert.Equal(t, "test:ocr:abc123", store.key("abc123"))
}

func TestRedis_StatsSurviveScanFailure(t *testing.T) {
	store := deadRedis()
	defer store.Close()

	stats := store.Stats(context.Background())
	assert.Equal(t, "redis", stats.Backend)
	assert.Zero(t, stats.Size)
	assert.Equal(t, 60, stats.TTLSeconds)
}
