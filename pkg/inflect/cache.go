package inflect

import "sync"

// CacheKey identifies a memoized result.
type CacheKey struct {
	Operation Operation
	Word      string
	Count     string
}

// Cache stores computed inflections. Implementations must be safe for
// concurrent use. Entries are never invalidated because the rule tables of an
// engine are immutable once it is built.
type Cache interface {
	Get(key CacheKey) (string, bool)
	Set(key CacheKey, value string)
	Len() int
}

// MemoryCache is an unbounded map guarded by a RWMutex.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[CacheKey]string
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[CacheKey]string)}
}

// Get returns the cached value for key.
func (c *MemoryCache) Get(key CacheKey) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Set stores value under key. Concurrent writers of the same key always store
// the same value, so last-write-wins is fine.
func (c *MemoryCache) Set(key CacheKey, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Len reports the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// nopCache disables memoization.
type nopCache struct{}

func (nopCache) Get(CacheKey) (string, bool) { return "", false }
func (nopCache) Set(CacheKey, string)        {}
func (nopCache) Len() int                    { return 0 }

var _ Cache = (*MemoryCache)(nil)
