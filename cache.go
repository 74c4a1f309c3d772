package main

import (
	"sync"
	"time"
)

// memoCache is a small synchronous TTL cache. Expired entries are dropped
// lazily on Get; there is no background sweeper because the editor only
// ever holds a handful of keys.
type memoCache struct {
	mu      sync.Mutex
	entries map[string]memoEntry
}

type memoEntry struct {
	value   any
	expires time.Time
}

func newMemoCache() *memoCache {
	return &memoCache{entries: make(map[string]memoEntry)}
}

func (c *memoCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *memoCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoEntry{value: value, expires: time.Now().Add(ttl)}
}

func (c *memoCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
