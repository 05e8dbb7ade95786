package cache

import (
	"context"
	"sync"
	"time"
)

type item struct {
	value     interface{}
	expiresAt time.Time
}

func (it *item) expired() bool {
	return time.Now().After(it.expiresAt)
}

// Cache is a thread-safe in-memory cache with TTL support
type Cache struct {
	mu         sync.RWMutex
	items      map[string]*item
	defaultTTL time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewCache creates a new cache with the given default TTL and starts a
// background janitor that evicts expired entries.
func NewCache(defaultTTL time.Duration) *Cache {
	c := &Cache{
		items:      make(map[string]*item),
		defaultTTL: defaultTTL,
		stop:       make(chan struct{}),
	}

	interval := defaultTTL / 2
	if interval <= 0 {
		interval = time.Second
	}
	go c.janitor(interval)

	return c
}

// Get retrieves a value from cache
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, exists := c.items[key]
	if !exists || it.expired() {
		return nil, false
	}

	return it.value, true
}

// Set stores a value in cache with default TTL
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores a value in cache with custom TTL
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &item{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete removes a key from cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all items from cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*item)
}

// Invalidate removes entries whose key starts with prefix. An empty
// prefix removes only expired entries.
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prefix == "" {
		for key, it := range c.items {
			if it.expired() {
				delete(c.items, key)
			}
		}
		return
	}

	for key := range c.items {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.items, key)
		}
	}
}

func (c *Cache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Invalidate("")
		case <-c.stop:
			return
		}
	}
}

// Stop stops the janitor goroutine.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

// Size returns the number of items in cache
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// CacheWithFallback is a cache wrapper that falls back to a loader
// function on cache miss.
type CacheWithFallback struct {
	cache *Cache
}

// NewCacheWithFallback creates a cache with fallback function support
func NewCacheWithFallback(defaultTTL time.Duration) *CacheWithFallback {
	return &CacheWithFallback{
		cache: NewCache(defaultTTL),
	}
}

// GetOrSet retrieves from cache or calls fallback and caches its result.
func (c *CacheWithFallback) GetOrSet(ctx context.Context, key string, fallback func(context.Context) (interface{}, error), ttl time.Duration) (interface{}, error) {
	if value, found := c.cache.Get(key); found {
		return value, nil
	}

	value, err := fallback(ctx)
	if err != nil {
		return nil, err
	}

	if ttl > 0 {
		c.cache.SetWithTTL(key, value, ttl)
	} else {
		c.cache.Set(key, value)
	}

	return value, nil
}

// Invalidate invalidates cache entries matching prefix
func (c *CacheWithFallback) Invalidate(prefix string) {
	c.cache.Invalidate(prefix)
}

// Delete removes a single key.
func (c *CacheWithFallback) Delete(key string) {
	c.cache.Delete(key)
}

// Stop stops the cache janitor.
func (c *CacheWithFallback) Stop() {
	c.cache.Stop()
}
