// Package cache holds resolved lookups so repeated walks over the
// same conversation never hit the service twice.
package cache

import (
	"sync"
	"time"

	"rethread/internal/domain"
)

// MemoryCache is an in-memory lookup cache with TTL support. It
// caches failures as well as tweets: a status known to be deleted or
// protected stays that way for the lifetime of the entry, and
// re-asking the service would only burn rate limit.
type MemoryCache struct {
	entries sync.Map
	ttl     time.Duration
}

// cacheEntry holds one lookup outcome with expiration metadata.
type cacheEntry struct {
	tweet     *domain.Tweet
	err       error
	expiresAt time.Time
}

// NewMemoryCache creates an in-memory cache. A zero or negative TTL
// means entries never expire, which suits one-shot crawls.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	cache := &MemoryCache{ttl: ttl}
	if ttl > 0 {
		go cache.cleanup()
	}
	return cache
}

// Get retrieves a lookup outcome. ok is false on a miss or an expired
// entry; otherwise exactly one of tweet and err is set.
func (c *MemoryCache) Get(statusID string) (tweet *domain.Tweet, err error, ok bool) {
	value, loaded := c.entries.Load(statusID)
	if !loaded {
		return nil, nil, false
	}

	entry := value.(*cacheEntry)
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.entries.Delete(statusID)
		return nil, nil, false
	}

	return entry.tweet, entry.err, true
}

// Set stores a lookup outcome, overwriting any previous entry for the
// status.
func (c *MemoryCache) Set(statusID string, tweet *domain.Tweet, lookupErr error) {
	entry := &cacheEntry{tweet: tweet, err: lookupErr}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}
	c.entries.Store(statusID, entry)
}

// cleanup periodically removes expired entries.
func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	for range ticker.C {
		now := time.Now()
		c.entries.Range(func(key, value interface{}) bool {
			entry := value.(*cacheEntry)
			if now.After(entry.expiresAt) {
				c.entries.Delete(key)
			}
			return true
		})
	}
}
