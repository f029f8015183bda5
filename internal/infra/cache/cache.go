// Package cache provides a generic in-memory TTL cache with lazy expiry.
package cache

import (
	"sync"
	"time"

	"github.com/vietddude/fitlink/internal/core/clock"
	"github.com/vietddude/fitlink/internal/metrics"
)

// Stats holds cache performance counters.
// Misses include expired reads; Evictions count both lazy and swept removals.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Sets      int64 `json:"sets"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
}

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// Cache maps keys to values that expire after a per-entry TTL.
// Expiry is checked on read; there is no background janitor.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]entry[T]
	stats   Stats
	clock   clock.Clock
}

// New creates an empty cache. A nil clock uses the system clock.
func New[T any](clk clock.Clock) *Cache[T] {
	if clk == nil {
		clk = clock.Real()
	}
	return &Cache[T]{
		entries: make(map[string]entry[T]),
		clock:   clk,
	}
}

// Get returns the value for key while now < expiresAt. An expired entry is removed.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		return zero, false
	}

	if !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.stats.Misses++
		c.stats.Evictions++
		metrics.CacheLookupsTotal.WithLabelValues("expired").Inc()
		return zero, false
	}

	c.stats.Hits++
	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (c *Cache[T]) Set(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[T]{
		value:     value,
		expiresAt: c.clock.Now().Add(ttl),
	}
	c.stats.Sets++
}

// Delete removes key.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[T])
}

// EvictExpired sweeps every entry whose expiry has passed and returns how many were removed.
func (c *Cache[T]) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictExpiredLocked()
}

func (c *Cache[T]) evictExpiredLocked() int {
	now := c.clock.Now()
	count := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			count++
		}
	}
	c.stats.Evictions += int64(count)
	return count
}

// Stats sweeps expired entries, then returns the counters.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpiredLocked()
	stats := c.stats
	stats.Size = len(c.entries)
	return stats
}
