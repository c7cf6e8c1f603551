package rating

import (
	"sync"
	"sync/atomic"
)

// CacheKey identifies a memoized computation. The key is deliberately
// coarse: player plus the positional/financial parameters of the result.
// Callers must Clear the cache whenever the active profile changes or a
// tournament is finalized, otherwise a stale entry could be served for a
// different prize amount under the same key.
type CacheKey struct {
	PlayerID     string
	Position     int
	TotalPlayers int
	BuyIn        int
}

// Cache memoizes per-participant results. Safe for concurrent use;
// concurrent writers for the same key are last-write-wins, which is
// acceptable because the computation is deterministic for a fixed
// profile. Raw hit/miss counts are exposed for the metrics surface; the
// cache does not compute the ratio itself.
type Cache struct {
	mu      sync.RWMutex
	entries map[CacheKey]AdvancedResult

	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewCache() *Cache {
	return &Cache{entries: make(map[CacheKey]AdvancedResult)}
}

func (c *Cache) Get(key CacheKey) (AdvancedResult, bool) {
	c.mu.RLock()
	result, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return result, ok
}

func (c *Cache) Put(key CacheKey, result AdvancedResult) {
	c.mu.Lock()
	c.entries[key] = result
	c.mu.Unlock()
}

// Clear drops every entry. Hit/miss counters survive; they describe the
// process lifetime, not one cache generation.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[CacheKey]AdvancedResult)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Counts returns the raw hit and miss totals since process start.
func (c *Cache) Counts() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
