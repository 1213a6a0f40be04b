package cache

import (
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryCache is the L1 cache: a fixed number of segmented documents kept in
// least-recently-used order.
type MemoryCache struct {
	entries *lru.Cache[string, []string]

	mu    sync.Mutex
	stats CacheStats
}

// NewMemoryCache creates a memory cache holding up to capacity documents.
func NewMemoryCache(capacity int) (*MemoryCache, error) {
	c := &MemoryCache{
		stats: CacheStats{Capacity: int64(capacity)},
	}
	entries, err := lru.NewWithEvict(capacity, func(string, []string) {
		c.mu.Lock()
		c.stats.Evictions++
		c.stats.LastEvict = time.Now()
		c.mu.Unlock()
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// Get returns a copy of the sentences cached under key.
func (c *MemoryCache) Get(key string) ([]string, bool) {
	sentences, ok := c.entries.Get(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.LastAccess = time.Now()
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return slices.Clone(sentences), true
}

// Put stores sentences under key, evicting the least recently used entry
// when full.
func (c *MemoryCache) Put(key string, sentences []string) {
	c.entries.Add(key, slices.Clone(sentences))
}

// Contains checks if a key exists without updating recency.
func (c *MemoryCache) Contains(key string) bool {
	return c.entries.Contains(key)
}

// Delete removes key.
func (c *MemoryCache) Delete(key string) {
	c.entries.Remove(key)
}

// Clear removes all entries. Evictions caused by Clear are counted.
func (c *MemoryCache) Clear() {
	c.entries.Purge()
}

// Keys returns keys from oldest to newest.
func (c *MemoryCache) Keys() []string {
	return c.entries.Keys()
}

// Resize changes the capacity, evicting as needed.
func (c *MemoryCache) Resize(capacity int) int {
	evicted := c.entries.Resize(capacity)
	c.mu.Lock()
	c.stats.Capacity = int64(capacity)
	c.mu.Unlock()
	return evicted
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() CacheStats {
	c.mu.Lock()
	stats := c.stats
	c.mu.Unlock()

	stats.ItemCount = int64(c.entries.Len())
	stats.Size = stats.ItemCount
	stats.computeHitRate()
	return stats
}
