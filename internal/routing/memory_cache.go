package routing

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache with periodic eviction of entries past their retention.
type MemoryCache struct {
	mu              sync.RWMutex
	entries         map[string]memoryEntry
	cleanupInterval time.Duration
	lastCleanup     time.Time
}

type memoryEntry struct {
	entry   *CacheEntry
	evictAt time.Time
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an in-memory cache. cleanupInterval defaults to 5 minutes.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}
	return &MemoryCache{
		entries:         make(map[string]memoryEntry),
		cleanupInterval: cleanupInterval,
	}
}

// Get returns the entry for key if it has not been evicted.
func (c *MemoryCache) Get(_ context.Context, key string) (*CacheEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.evictAt) {
		return nil, false, nil
	}
	return e.entry, true, nil
}

// Set stores entry until retention elapses.
func (c *MemoryCache) Set(_ context.Context, key string, entry *CacheEntry, retention time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.entries[key] = memoryEntry{entry: entry, evictAt: now.Add(retention)}
	c.cleanupLocked(now)
	return nil
}

// Len returns the number of stored entries, including ones awaiting eviction.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) cleanupLocked(now time.Time) {
	if now.Sub(c.lastCleanup) < c.cleanupInterval {
		return
	}
	c.lastCleanup = now
	for key, e := range c.entries {
		if now.After(e.evictAt) {
			delete(c.entries, key)
		}
	}
}
