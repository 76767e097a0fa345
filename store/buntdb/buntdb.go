package buntdb

import (
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/buntdb"
	"github.com/yaoapp/kun/log"
)

// BuntDB BuntDB store
type BuntDB struct {
	db *buntdb.DB
}

// New open the datafile, fall back to an in-memory database when the
// directory does not exist or the path is ":memory:"
func New(datafile string) (*BuntDB, error) {
	path := ":memory:"
	if datafile != "" && datafile != ":memory:" {
		if _, err := os.Stat(filepath.Dir(datafile)); err == nil {
			path = datafile
		} else {
			log.Warn("Store buntdb: %s does not exist, using memory", filepath.Dir(datafile))
		}
	}

	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &BuntDB{db: db}, nil
}

// Get looks up a key's value
func (bunt *BuntDB) Get(key string) (value interface{}, ok bool) {
	var raw string
	err := bunt.db.View(func(tx *buntdb.Tx) error {
		var err error
		raw, err = tx.Get(key)
		return err
	})

	if err != nil {
		if err != buntdb.ErrNotFound {
			log.Error("Store buntdb Get %s: %s", key, err.Error())
		}
		return nil, false
	}

	if err := jsoniter.UnmarshalFromString(raw, &value); err != nil {
		log.Error("Store buntdb Get %s: %s", key, err.Error())
		return nil, false
	}
	return value, true
}

// Set stores a value, a positive ttl expires the key
func (bunt *BuntDB) Set(key string, value interface{}, ttl time.Duration) error {
	raw, err := jsoniter.MarshalToString(value)
	if err != nil {
		log.Error("Store buntdb Set %s: %s", key, err.Error())
		return err
	}

	var option *buntdb.SetOptions
	if ttl > 0 {
		option = &buntdb.SetOptions{Expires: true, TTL: ttl}
	}

	err = bunt.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, raw, option)
		return err
	})
	if err != nil {
		log.Error("Store buntdb Set %s: %s", key, err.Error())
	}
	return err
}

// Del removes a key
func (bunt *BuntDB) Del(key string) error {
	err := bunt.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key)
		return err
	})
	if err == buntdb.ErrNotFound {
		return nil
	}
	return err
}

// Has check if the key exists
func (bunt *BuntDB) Has(key string) bool {
	_, ok := bunt.Get(key)
	return ok
}

// Len the number of keys
func (bunt *BuntDB) Len() int {
	n := 0
	bunt.db.View(func(tx *buntdb.Tx) error {
		var err error
		n, err = tx.Len()
		return err
	})
	return n
}

// Keys all the keys
func (bunt *BuntDB) Keys() []string {
	keys := []string{}
	bunt.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys("*", func(key, value string) bool {
			keys = append(keys, key)
			return true
		})
	})
	return keys
}

// Clear removes all keys
func (bunt *BuntDB) Clear() {
	err := bunt.db.Update(func(tx *buntdb.Tx) error {
		return tx.DeleteAll()
	})
	if err != nil {
		log.Error("Store buntdb Clear: %s", err.Error())
	}
}

// Close the database
func (bunt *BuntDB) Close() error {
	return bunt.db.Close()
}
