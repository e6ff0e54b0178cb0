// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"sync"
	"time"
)

type (
	// Cache is a TTL-keyed RegistryState cache. It is passed by handle to
	// whoever needs memoized snapshots; there is no ambient global cache.
	// Entries are lazily evicted on the next read past expiry; no background
	// eviction runs.
	Cache struct {
		mu      sync.Mutex
		ttl     time.Duration
		entries map[string]cacheEntry
		now     func() time.Time
	}

	cacheEntry struct {
		state     *RegistryState
		expiresAt time.Time
	}
)

// NewCache creates a Cache with the given TTL. A zero or negative TTL means
// entries expire immediately, effectively disabling caching.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached state for key, or (nil, false) when absent or
// expired. Expired entries are evicted on read.
func (c *Cache) Get(key string) (*RegistryState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	return entry.state, true
}

// Set stores state under key with a fresh TTL.
func (c *Cache) Set(key string, state *RegistryState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		state:     state,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Invalidate removes the entry for key, if present.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// InvalidateAll removes every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}
