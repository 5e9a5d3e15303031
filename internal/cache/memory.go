package cache

import (
	"context"
	"sync"
	"time"

	"github.com/lxlab/oss-scout/internal/models"
)

// MemoryCache is the default single-process backend: a mutex-guarded map
// with lazy eviction on lookup.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
	ttl     time.Duration
	now     Clock
}

func NewMemoryCache(ttl time.Duration, now Clock) *MemoryCache {
	if now == nil {
		now = time.Now
	}

	return &MemoryCache{
		entries: make(map[string]models.CacheEntry),
		ttl:     ttl,
		now:     now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*models.CacheEntry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if entry.Expired(c.now()) {
		c.mu.Lock()
		// Re-check: another goroutine may have republished the key.
		if current, ok := c.entries[key]; ok && current.Expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return &entry, true
}

// Put assembles the entry outside the lock and publishes it with a single
// map assignment, so concurrent readers never observe a partial write.
// Concurrent writers of the same key simply overwrite, last one wins.
func (c *MemoryCache) Put(_ context.Context, key string, results []models.ScoredRepo, intentKeywords []string) {
	entry := models.CacheEntry{
		Key:            key,
		Results:        results,
		IntentKeywords: intentKeywords,
		ExpiresAt:      c.now().Add(c.ttl),
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}
