// Package cache provides the in-memory response cache shared by all weather
// fetches within one process. It exists purely to suppress redundant provider
// calls and is never persisted.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the maximum age before a cached response counts as stale.
const DefaultTTL = 60 * time.Second

type entry struct {
	payload  interface{}
	storedAt time.Time
}

// Cache is a concurrency-safe key/value store with lazy per-entry expiry.
// Entries are never proactively evicted; staleness is computed on read.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

// New creates a Cache with the given TTL. A TTL <= 0 falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock creates a Cache using the supplied clock. Tests inject a fake
// clock to pin TTL boundaries.
func NewWithClock(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry),
	}
}

// Get returns the payload stored under key, or false if the key is unknown
// or the entry has reached the TTL.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		return nil, false
	}
	return e.payload, true
}

// Put stores payload under key, replacing any previous entry and restarting
// its TTL.
func (c *Cache) Put(key string, payload interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{payload: payload, storedAt: c.now()}
}
