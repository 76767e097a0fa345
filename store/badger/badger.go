package badger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	jsoniter "github.com/json-iterator/go"
)

// Badger the badger store
type Badger struct {
	db   *badger.DB
	path string
	mu   sync.RWMutex
}

// New open (or create) a badger database under path
func New(path string) (*Badger, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %v", path, err)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %v", err)
	}

	return &Badger{db: db, path: path}, nil
}

// Close close the badger database
func (b *Badger) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.db.Close()
}

// Get get a value by key
func (b *Badger) Get(key string) (value interface{}, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result interface{}
	var found bool

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			if err := jsoniter.Unmarshal(val, &result); err != nil {
				return err
			}
			found = true
			return nil
		})
	})

	if err != nil {
		return nil, false
	}
	return result, found
}

// Set set a key-value pair with optional TTL
func (b *Badger) Set(key string, value interface{}, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := jsoniter.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %v", err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Del delete a key
func (b *Badger) Del(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Has check if a key exists
func (b *Badger) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var exists bool
	b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		exists = (err == nil)
		return nil
	})
	return exists
}

// Len get the number of keys in the store
func (b *Badger) Len() int {
	return len(b.Keys())
}

// Keys get all keys in the store
func (b *Badger) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := []string{}
	b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys
}

// Clear remove all keys from the store
func (b *Badger) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.db.DropAll()
}
