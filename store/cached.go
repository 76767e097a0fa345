package store

import (
	"time"

	"github.com/yaoapp/blocks/store/lru"
)

// Cached a read-through LRU cache in front of a slower store.
// Writes go to the backend first, then the cache.
type Cached struct {
	backend Store
	cache   *lru.Cache
}

// NewCached wrap the backend with an LRU cache of the given size
func NewCached(backend Store, size int) (*Cached, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cached{backend: backend, cache: cache}, nil
}

// Get cache first, lazy load from the backend on miss
func (c *Cached) Get(key string) (interface{}, bool) {
	if value, ok := c.cache.Get(key); ok {
		return value, true
	}

	value, ok := c.backend.Get(key)
	if ok {
		c.cache.Set(key, value, 0)
	}
	return value, ok
}

// Set write through
func (c *Cached) Set(key string, value interface{}, ttl time.Duration) error {
	if err := c.backend.Set(key, value, ttl); err != nil {
		c.cache.Del(key)
		return err
	}
	if ttl > 0 {
		// the cache cannot expire entries
		c.cache.Del(key)
		return nil
	}
	return c.cache.Set(key, value, ttl)
}

// Del remove from both
func (c *Cached) Del(key string) error {
	c.cache.Del(key)
	return c.backend.Del(key)
}

// Has check the backend when the cache misses
func (c *Cached) Has(key string) bool {
	return c.cache.Has(key) || c.backend.Has(key)
}

// Len the backend size
func (c *Cached) Len() int {
	return c.backend.Len()
}

// Keys the backend keys
func (c *Cached) Keys() []string {
	return c.backend.Keys()
}

// Clear both
func (c *Cached) Clear() {
	c.cache.Clear()
	c.backend.Clear()
}

// Close the backend
func (c *Cached) Close() error {
	c.cache.Close()
	return c.backend.Close()
}
