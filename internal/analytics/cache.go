package analytics

import (
	"context"
	"sync"
	"time"

	"flowpulse/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Cache stores computed performance stats per workflow with a TTL.
type Cache interface {
	Get(workflowID string) (*Stats, bool)
	Set(workflowID string, stats *Stats)
	DeleteExpired()
}

type memoryEntry struct {
	stats     *Stats
	expiresAt time.Time
}

// memoryCache is the default per-process cache.
type memoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

func newMemoryCache(ttl time.Duration) *memoryCache {
	return &memoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (c *memoryCache) Get(workflowID string) (*Stats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[workflowID]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.stats, true
}

func (c *memoryCache) Set(workflowID string, stats *Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[workflowID] = memoryEntry{
		stats:     stats,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *memoryCache) DeleteExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// redisCache shares computed stats across processes. Expiry is handled by
// Redis itself.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newRedisCache(client *redis.Client, ttl time.Duration) *redisCache {
	return &redisCache{client: client, ttl: ttl}
}

func cacheKey(workflowID string) string {
	return "flowpulse:stats:" + workflowID
}

func (c *redisCache) Get(workflowID string) (*Stats, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := c.client.Get(ctx, cacheKey(workflowID)).Result()
	if err != nil {
		return nil, false
	}
	stats, err := utils.FromJSON[Stats](raw)
	if err != nil {
		return nil, false
	}
	return &stats, true
}

func (c *redisCache) Set(workflowID string, stats *Stats) {
	raw, err := utils.ToJSON(stats)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = c.client.Set(ctx, cacheKey(workflowID), raw, c.ttl).Err()
}

func (c *redisCache) DeleteExpired() {
	// Redis expires keys on its own.
}
