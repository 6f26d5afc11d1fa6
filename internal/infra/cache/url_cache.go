package cache

import (
	"sync"
	"time"
)

// refreshMargin treats entries as stale shortly before the signed URL expires.
const refreshMargin = 30 * time.Second

type entry struct {
	url       string
	expiresAt time.Time
}

// URLCache memoizes presigned download URLs per object key.
type URLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewURLCache() *URLCache {
	return &URLCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *URLCache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Add(refreshMargin).Before(e.expiresAt) {
		return "", false
	}
	return e.url, true
}

func (c *URLCache) Set(key, url string, expiresAt time.Time) {
	c.mu.Lock()
	c.entries[key] = entry{url: url, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Forget removes a key, typically after the object was deleted.
func (c *URLCache) Forget(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Sweep removes expired entries and returns how many were dropped.
func (c *URLCache) Sweep() int {
	now := c.now()
	dropped := 0

	c.mu.Lock()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			dropped++
		}
	}
	c.mu.Unlock()

	return dropped
}
