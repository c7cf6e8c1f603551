package rating

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePutGetClear(t *testing.T) {
	cache := NewCache()
	key := CacheKey{PlayerID: "p1", Position: 3, TotalPlayers: 40, BuyIn: 100}
	result := AdvancedResult{NewRating: 1024, RatingChange: 24, ConfidenceLevel: 0.9}

	_, ok := cache.Get(key)
	require.False(t, ok)

	cache.Put(key, result)
	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, result, got)

	cache.Clear()
	_, ok = cache.Get(key)
	assert.False(t, ok)
	assert.Zero(t, cache.Len())
}

func TestCacheCounts(t *testing.T) {
	cache := NewCache()
	key := CacheKey{PlayerID: "p1", Position: 1, TotalPlayers: 10, BuyIn: 50}

	cache.Get(key)
	cache.Put(key, AdvancedResult{NewRating: 1010})
	cache.Get(key)
	cache.Get(key)

	hits, misses := cache.Counts()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestCacheKeyDiscriminates(t *testing.T) {
	cache := NewCache()
	cache.Put(CacheKey{PlayerID: "p1", Position: 1, TotalPlayers: 10, BuyIn: 50}, AdvancedResult{NewRating: 1010})

	_, ok := cache.Get(CacheKey{PlayerID: "p1", Position: 2, TotalPlayers: 10, BuyIn: 50})
	assert.False(t, ok)
	_, ok = cache.Get(CacheKey{PlayerID: "p2", Position: 1, TotalPlayers: 10, BuyIn: 50})
	assert.False(t, ok)
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := NewCache()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := CacheKey{PlayerID: fmt.Sprintf("p%d", n%4), Position: n % 8, TotalPlayers: 32, BuyIn: 10}
			cache.Put(key, AdvancedResult{NewRating: 1000 + n})
			cache.Get(key)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Len(), 8)
}
