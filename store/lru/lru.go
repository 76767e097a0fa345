package lru

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// Cache lru cache
type Cache struct {
	size int
	lru  *lru.ARCCache
}

// New create a new LRU cache
func New(size int) (*Cache, error) {
	arc, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	return &Cache{size: size, lru: arc}, nil
}

// Get looks up a key's value from the cache.
func (cache *Cache) Get(key string) (value interface{}, ok bool) {
	return cache.lru.Get(key)
}

// Set adds a value to the cache.
func (cache *Cache) Set(key string, value interface{}, ttl time.Duration) error {
	cache.lru.Add(key, value)
	return nil
}

// Del remove is used to purge a key from the cache
func (cache *Cache) Del(key string) error {
	cache.lru.Remove(key)
	return nil
}

// Has check if the cache is exist ( without updating recency or frequency )
func (cache *Cache) Has(key string) bool {
	_, has := cache.lru.Peek(key)
	return has
}

// Len returns the number of cached entries
func (cache *Cache) Len() int {
	return cache.lru.Len()
}

// Keys returns all the cached keys
func (cache *Cache) Keys() []string {
	keys := cache.lru.Keys()
	res := []string{}
	for _, key := range keys {
		keystr, ok := key.(string)
		if !ok {
			keystr = fmt.Sprintf("%v", key)
		}
		res = append(res, keystr)
	}
	return res
}

// Clear is used to clear the cache
func (cache *Cache) Clear() {
	cache.lru.Purge()
}

// Close purge the cache
func (cache *Cache) Close() error {
	cache.lru.Purge()
	return nil
}
