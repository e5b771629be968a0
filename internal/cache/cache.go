// Package cache provides the per-process query-result cache: TTL-based
// expiry from [github.com/patrickmn/go-cache] plus a capacity bound with
// oldest-insertion eviction. Entries are shared across concurrent requests.
// Eviction is oldest-insertion, not LRU.
package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is the entry lifetime used when the caller passes zero.
const DefaultTTL = 5 * time.Minute

// DefaultCapacity bounds the entry count used when the caller passes zero.
const DefaultCapacity = 256

// Cache is a TTL and capacity bounded key/value cache, safe for concurrent
// use.
type Cache struct {
	inner *gocache.Cache

	mu       sync.Mutex
	capacity int
	inserted map[string]time.Time
	now      func() time.Time
}

// New returns a cache whose entries expire after ttl and which never holds
// more than capacity entries. Zero values select the defaults.
func New(ttl time.Duration, capacity int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		inner:    gocache.New(ttl, ttl),
		capacity: capacity,
		inserted: make(map[string]time.Time, capacity),
		now:      time.Now,
	}
}

// Get returns the live value for key, or ok=false on a miss or expiry.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.inner.Get(key)
	if !ok {
		// Expired entries linger in the insertion index until touched.
		c.mu.Lock()
		delete(c.inserted, key)
		c.mu.Unlock()
		return nil, false
	}
	return v, true
}

// Set stores value under key with the default TTL. When the cache is full
// and key is new, the oldest insertion is evicted first.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	if _, exists := c.inserted[key]; !exists && len(c.inserted) >= c.capacity {
		c.evictOldestLocked()
	}
	c.inserted[key] = c.now()
	c.mu.Unlock()

	c.inner.SetDefault(key, value)
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.inserted, key)
	c.mu.Unlock()
	c.inner.Delete(key)
}

// Len returns the number of tracked entries, including ones whose TTL has
// lapsed but which have not been touched since.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inserted)
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.inserted = make(map[string]time.Time, c.capacity)
	c.mu.Unlock()
	c.inner.Flush()
}

// evictOldestLocked removes the entry with the earliest insertion time.
// Caller holds c.mu.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, at := range c.inserted {
		if first || at.Before(oldestAt) {
			oldestKey, oldestAt, first = k, at, false
		}
	}
	if oldestKey != "" {
		delete(c.inserted, oldestKey)
		c.inner.Delete(oldestKey)
	}
}
