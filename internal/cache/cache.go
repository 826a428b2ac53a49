// Package cache provides the in-memory response cache for resolved
// registry lookups, with per-entry TTL expiry and an opportunistic sweep
// when the entry count exceeds the configured maximum.
//
// This is deliberately a TTL cache, not an LRU cache: the sweep on Set
// removes only entries whose TTL has already elapsed, so the map can hold
// more than MaxEntries while nothing is expired. Bounded memory comes
// from the TTL, not from strict size enforcement.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// ResponseCache caches serialized responses keyed by request identity.
// Safe for concurrent use.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]*entry

	enabled    bool
	ttl        time.Duration
	maxEntries int

	// Statistics tracking (atomic for thread safety)
	hits      int64
	misses    int64
	evictions int64
}

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// Stats is a point-in-time view of cache counters.
type Stats struct {
	Entries   int   `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// New creates a response cache. A disabled cache never stores anything
// and always misses.
func New(enabled bool, ttl time.Duration, maxEntries int) *ResponseCache {
	return &ResponseCache{
		entries:    make(map[string]*entry),
		enabled:    enabled,
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Enabled reports whether the cache stores entries at all.
func (c *ResponseCache) Enabled() bool {
	return c.enabled
}

// Get returns the cached payload for key, or a miss if the entry is
// absent or expired. An expired entry discovered here is removed eagerly.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	if !c.enabled {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		atomic.AddInt64(&c.evictions, 1)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&c.hits, 1)
	return e.payload, true
}

// Set stores payload under key with the configured TTL. When the map has
// grown strictly past the maximum entry count, all currently expired
// entries are purged first. There is no background eviction goroutine.
func (c *ResponseCache) Set(key string, payload []byte) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) > c.maxEntries {
		c.sweepExpiredLocked()
	}

	c.entries[key] = &entry{
		payload:   payload,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// sweepExpiredLocked removes all entries whose TTL has elapsed. Caller
// must hold the write lock.
func (c *ResponseCache) sweepExpiredLocked() {
	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			atomic.AddInt64(&c.evictions, 1)
		}
	}
}

// Len returns the current number of entries, expired or not.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries and resets counters.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.evictions, 0)
}

// GetStats returns a consistent-enough snapshot of the cache counters.
func (c *ResponseCache) GetStats() Stats {
	c.mu.RLock()
	count := len(c.entries)
	c.mu.RUnlock()

	return Stats{
		Entries:   count,
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Evictions: atomic.LoadInt64(&c.evictions),
	}
}
