// Package cache provides the response cache used for GitHub GET requests.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// Cache stores opaque values under string keys with a per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Config selects and sizes a cache backend.
type Config struct {
	Enabled   bool
	RedisURL  string
	KeyPrefix string
	MaxSize   int
}

// New returns a Redis cache when a URL is configured, an in-memory LRU
// otherwise, and a no-op cache when caching is disabled.
func New(cfg Config) (Cache, error) {
	switch {
	case !cfg.Enabled:
		return NewNoOpsCache(), nil
	case cfg.RedisURL != "":
		return NewRedisCache(cfg.RedisURL, cfg.KeyPrefix)
	default:
		return NewMemoryCache(cfg.MaxSize)
	}
}

// MemoryCache is an in-process LRU with expiring entries.
type MemoryCache struct {
	cache *lru.Cache
	mu    sync.RWMutex
	now   func() time.Time
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryCache(maxSize int) (*MemoryCache, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &MemoryCache{
		cache: cache,
		now:   time.Now,
	}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}

	entry := val.(cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.cache.Remove(key)
		return nil, false
	}

	return entry.value, true
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Add(key, cacheEntry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	})
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	return c.cache.Len()
}

// NoOpsCache disables caching.
type NoOpsCache struct{}

func NewNoOpsCache() *NoOpsCache {
	return &NoOpsCache{}
}

func (c *NoOpsCache) Get(context.Context, string) ([]byte, bool) {
	return nil, false
}

func (c *NoOpsCache) Set(context.Context, string, []byte, time.Duration) {}
