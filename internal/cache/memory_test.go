package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetAfterPut(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(10, time.Minute)

	require.NoError(t, store.Put(ctx, "fp1", []byte(`{"text":"hello"}`)))

	value, ok := store.Get(ctx, "fp1")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"text":"hello"}`), value)
}

func TestMemory_MissOnAbsentKey(t *testing.T) {
	store := NewMemory(10, time.Minute)

	_, ok := store.Get(context.Background(), "nope")
	assert.False(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(10, 30*time.Millisecond)

	require.NoError(t, store.Put(ctx, "fp1", []byte("v")))
	_, ok := store.Get(ctx, "fp1")
	require.True(t, ok)

	time.Sleep(60 * time.Millisecond)

	_, ok = store.Get(ctx, "fp1")
	assert.False(t, ok)
}

func TestMemory_EvictsAtCapacity(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(2, time.Minute)

	require.NoError(t, store.Put(ctx, "a", []byte("1")))
	require.NoError(t, store.Put(ctx, "b", []byte("2")))
	require.NoError(t, store.Put(ctx, "c", []byte("3")))

	// Oldest entry is evicted, newest two survive.
	_, ok := store.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = store.Get(ctx, "b")
	assert.True(t, ok)
	_, ok = store.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemory_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(10, time.Minute)

	require.NoError(t, store.Put(ctx, "a", []byte("1")))
	require.NoError(t, store.Put(ctx, "b", []byte("2")))

	require.NoError(t, store.Delete(ctx, "a"))
	_, ok := store.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, store.Clear(ctx))
	_, ok = store.Get(ctx, "b")
	assert.False(t, ok)
	assert.Zero(t, store.Stats(ctx).Size)
}

func TestMemory_Stats(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(50, 2*time.Minute)

	require.NoError(t, store.Put(ctx, "a", []byte("1")))
	store.Get(ctx, "a")    // hit
	store.Get(ctx, "a")    // hit
	store.Get(ctx, "gone") // miss

	stats := store.Stats(ctx)
	assert.Equal(t, "memory", stats.Backend)
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 50, stats.MaxSize)
	assert.Equal(t, 120, stats.TTLSeconds)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 66.67, stats.HitRatePercent, 0.01)
}

func TestHitRate_NoTraffic(t *testing.T) {
	assert.Zero(t, hitRate(0, 0))
}
