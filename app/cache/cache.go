package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a bounded TTL cache with an injected clock and explicit eviction.
// Owned by the process lifecycle; no background goroutines, no module-level
// state.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	items      map[string]entry
}

func New(maxEntries int, ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        now,
		items:      make(map[string]entry),
	}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}

	if c.now().After(e.expiresAt) {
		delete(c.items, key)
		return nil, false
	}

	return e.value, true
}

func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, k)
		}
	}

	// Still full after dropping expired entries: evict whichever entry
	// expires soonest
	if len(c.items) >= c.maxEntries {
		var oldestKey string
		var oldestExpiry time.Time
		for k, e := range c.items {
			if oldestKey == "" || e.expiresAt.Before(oldestExpiry) {
				oldestKey = k
				oldestExpiry = e.expiresAt
			}
		}
		if oldestKey != "" {
			delete(c.items, oldestKey)
		}
	}

	c.items[key] = entry{value: value, expiresAt: now.Add(c.ttl)}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
