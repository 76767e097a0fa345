package store

import "time"

// Store The interface of a key-value store backing a variable scope
type Store interface {
	Get(key string) (value interface{}, ok bool)
	Set(key string, value interface{}, ttl time.Duration) error
	Del(key string) error
	Has(key string) bool
	Len() int
	Keys() []string
	Clear()
	Close() error
}

// Option the driver option
type Option map[string]interface{}

// Drivers the supported driver names
var Drivers = []string{"memory", "lru", "badger", "buntdb", "redis", "mongo"}
