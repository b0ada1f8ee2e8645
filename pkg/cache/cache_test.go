package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bar struct {
	T time.Time `json:"t"`
	C float64   `json:"c"`
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time      { c.mu.Lock(); defer c.mu.Unlock(); return c.t }
func (c *clock) add(d time.Duration) { c.mu.Lock(); defer c.mu.Unlock(); c.t = c.t.Add(d) }

func TestMemoryRoundTripAndExpiry(t *testing.T) {
	clk := &clock{t: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryClock(clk.now), WithMemoryCleanup(0))
	defer mc.Close()
	ctx := context.Background()

	in := []bar{{T: clk.now(), C: 101.5}}
	require.NoError(t, mc.Set(ctx, "bars:SPY", in, time.Minute))

	var out []bar
	require.NoError(t, mc.Get(ctx, "bars:SPY", &out))
	require.Len(t, out, 1)
	assert.Equal(t, 101.5, out[0].C)
	assert.True(t, in[0].T.Equal(out[0].T))

	clk.add(2 * time.Minute)
	assert.ErrorIs(t, mc.Get(ctx, "bars:SPY", &out), ErrCacheMiss)
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	clk := &clock{t: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryClock(clk.now), WithMemoryCleanup(0))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, 0))
	clk.add(time.Second)
	require.NoError(t, mc.Set(ctx, "b", 2, 0))
	clk.add(time.Second)
	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	clk.add(time.Second)
	require.NoError(t, mc.Set(ctx, "c", 3, 0))

	assert.Equal(t, 2, mc.Len())
	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "a", &v))
	assert.Equal(t, 1, v)
}

func TestLayeredPromotesFromRemote(t *testing.T) {
	remote := NewMemoryCache(WithMemoryCleanup(0))
	lc := NewLayeredCache(remote, WithLayeredMemoryTTL(time.Minute))
	defer lc.Close()
	ctx := context.Background()

	require.NoError(t, remote.Set(ctx, "k", map[string]int{"x": 1}, time.Hour))

	var got map[string]int
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, 1, got["x"])

	require.NoError(t, remote.Delete(ctx, "k"))
	got = nil
	require.NoError(t, lc.Get(ctx, "k", &got), "served from L1")

	require.NoError(t, lc.Delete(ctx, "k"))
	assert.ErrorIs(t, lc.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "bars:SPY:1m:1736500000", Key("bars", "SPY", "1m", 1736500000))
}
