package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSet(t *testing.T) {
	c := New(true, time.Minute, 100)

	_, ok := c.Get("serde@latest")
	assert.False(t, ok)

	c.Set("serde@latest", []byte(`{"exists":true}`))
	payload, ok := c.Get("serde@latest")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"exists":true}`), payload)

	stats := c.GetStats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestDisabledCache(t *testing.T) {
	c := New(false, time.Minute, 100)
	assert.False(t, c.Enabled())

	c.Set("key", []byte("payload"))
	_, ok := c.Get("key")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	stats := c.GetStats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
}

func TestTTLExpiry(t *testing.T) {
	c := New(true, 10*time.Millisecond, 100)
	c.Set("key", []byte("payload"))

	_, ok := c.Get("key")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get("key")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry is removed on read")
	assert.Equal(t, int64(1), c.GetStats().Evictions)
}

// The sweep on Set removes only expired entries: with everything still
// fresh the map is allowed to grow past the maximum.
func TestSetSweepsOnlyExpired(t *testing.T) {
	c := New(true, time.Minute, 1)

	c.Set("first", []byte("a"))
	c.Set("second", []byte("b"))
	assert.Equal(t, 2, c.Len())

	_, ok := c.Get("first")
	assert.True(t, ok)
	_, ok = c.Get("second")
	assert.True(t, ok)
}

func TestSetSweepRemovesExpired(t *testing.T) {
	c := New(true, 10*time.Millisecond, 2)
	c.Set("old-a", []byte("a"))
	c.Set("old-b", []byte("b"))
	time.Sleep(20 * time.Millisecond)

	// At exactly max entries the threshold is not exceeded yet, so the
	// expired entries survive this insert.
	c.Set("fresh-1", []byte("c"))
	assert.Equal(t, 3, c.Len())

	// One past the maximum triggers the sweep of everything expired.
	c.Set("fresh-2", []byte("d"))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(2), c.GetStats().Evictions)

	_, ok := c.Get("fresh-1")
	assert.True(t, ok)
	_, ok = c.Get("fresh-2")
	assert.True(t, ok)
}

func TestClear(t *testing.T) {
	c := New(true, time.Minute, 100)
	c.Set("key", []byte("payload"))
	c.Get("key")
	c.Get("absent")

	c.Clear()
	assert.Equal(t, 0, c.Len())
	stats := c.GetStats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
	assert.Zero(t, stats.Evictions)
}

func TestOverwrite(t *testing.T) {
	c := New(true, time.Minute, 100)
	c.Set("key", []byte("old"))
	c.Set("key", []byte("new"))

	payload, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), payload)
	assert.Equal(t, 1, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	c := New(true, time.Minute, 1000)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("crate-%d@%d", g, i)
				c.Set(key, []byte("payload"))
				c.Get(key)
				c.GetStats()
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 800, c.Len())
	assert.Equal(t, int64(800), c.GetStats().Hits)
}
