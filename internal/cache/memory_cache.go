package cache

import (
	"context"
	"sync"
	"time"
)

const defaultMemoryCacheCapacity = 10_000

type memoryEntry struct {
	userID    uint
	expiresAt time.Time
}

// MemoryCache is a process-local SessionCache. Expired entries are dropped
// on read and swept when the cache reaches capacity.
type MemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	capacity int
	now      func() time.Time
}

func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = defaultMemoryCacheCapacity
	}
	return &MemoryCache{
		entries:  make(map[string]memoryEntry),
		capacity: capacity,
		now:      time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, tokenHash string) (uint, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[tokenHash]
	c.mu.RUnlock()
	if !ok {
		return 0, false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		if current, still := c.entries[tokenHash]; still && current == entry {
			delete(c.entries, tokenHash)
		}
		c.mu.Unlock()
		return 0, false, nil
	}
	return entry.userID, true, nil
}

func (c *MemoryCache) Set(_ context.Context, tokenHash string, userID uint, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[tokenHash]; !exists && len(c.entries) >= c.capacity {
		c.sweepLocked(now)
		if len(c.entries) >= c.capacity {
			return nil
		}
	}
	c.entries[tokenHash] = memoryEntry{userID: userID, expiresAt: now.Add(ttl)}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, tokenHashes ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tokenHash := range tokenHashes {
		delete(c.entries, tokenHash)
	}
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) Close() error {
	return nil
}

func (c *MemoryCache) sweepLocked(now time.Time) {
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}
