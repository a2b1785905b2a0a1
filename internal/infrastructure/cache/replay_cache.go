package cache

import (
	"sync"
	"time"

	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
)

// cacheEntry pairs a record with the time it entered the cache
type cacheEntry struct {
	record   *entity.IdempotencyRecord
	cachedAt time.Time
}

// ReplayCache is a thread-safe in-memory cache of idempotency records,
// consulted before the persistent store on the replay path. Records are
// immutable once written, so entries can never go stale; the TTL only
// bounds memory held for keys that stop being retried.
type ReplayCache struct {
	entries map[string]cacheEntry
	ttl     time.Duration
	mutex   sync.RWMutex
}

// NewReplayCache creates a new replay cache. A non-positive ttl falls back
// to 24 hours.
func NewReplayCache(ttl time.Duration) *ReplayCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &ReplayCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Get retrieves a record from the cache if present and not expired
func (c *ReplayCache) Get(key string) *entity.IdempotencyRecord {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Since(entry.cachedAt) > c.ttl {
		return nil
	}

	return entry.record
}

// Put stores a record in the cache
func (c *ReplayCache) Put(record *entity.IdempotencyRecord) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[record.Key] = cacheEntry{
		record:   record,
		cachedAt: time.Now(),
	}
}

// Size returns the number of cached records
func (c *ReplayCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

// Clear removes all entries from the cache
func (c *ReplayCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]cacheEntry)
}

// CleanExpired removes expired entries and returns how many were dropped
func (c *ReplayCache) CleanExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	count := 0
	now := time.Now()

	for key, entry := range c.entries {
		if now.Sub(entry.cachedAt) > c.ttl {
			delete(c.entries, key)
			count++
		}
	}

	return count
}
