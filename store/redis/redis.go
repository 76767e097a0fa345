package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"
	"github.com/yaoapp/kun/log"
)

// Store redis store
type Store struct {
	rdb    *redis.Client
	Option Option
}

// Option redis option
type Option struct {
	Host    string
	Port    string
	User    string
	Pass    string
	DB      int
	Timeout int // seconds
	Prefix  string
}

// New connect to the redis server
func New(option Option) (*Store, error) {
	if option.Host == "" {
		return nil, fmt.Errorf("store redis: option.host is required")
	}

	if option.Port == "" {
		option.Port = "6379"
	}

	if option.Timeout == 0 {
		option.Timeout = 5
	}

	opts := &redis.Options{
		Addr: fmt.Sprintf("%s:%s", option.Host, option.Port),
		DB:   option.DB,
	}

	if option.User != "" {
		opts.Username = option.User
	}

	if option.Pass != "" {
		opts.Password = option.Pass
	}

	client := redis.NewClient(opts).WithTimeout(time.Duration(option.Timeout) * time.Second)
	_, err := client.Ping(context.Background()).Result()
	if err != nil {
		return nil, err
	}

	return &Store{rdb: client, Option: option}, nil
}

// Get looks up a key's value from the store.
func (store *Store) Get(key string) (value interface{}, ok bool) {
	key = fmt.Sprintf("%s%s", store.Option.Prefix, key)
	val, err := store.rdb.Get(context.Background(), key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Error("Store redis Get %s: %s", key, err.Error())
		}
		return nil, false
	}

	err = jsoniter.Unmarshal([]byte(val), &value)
	if err != nil {
		log.Error("Store redis Get %s: %s val: %s", key, err.Error(), val)
		return nil, false
	}

	return value, true
}

// Set adds a value to the store.
func (store *Store) Set(key string, value interface{}, ttl time.Duration) error {
	key = fmt.Sprintf("%s%s", store.Option.Prefix, key)
	bytes, err := jsoniter.Marshal(value)
	if err != nil {
		log.Error("Store redis Set %s: %s", key, err.Error())
		return err
	}

	err = store.rdb.Set(context.Background(), key, bytes, ttl).Err()
	if err != nil {
		log.Error("Store redis Set %s: %s", key, err.Error())
		return err
	}
	return nil
}

// Del remove is used to purge a key from the store
func (store *Store) Del(key string) error {
	key = fmt.Sprintf("%s%s", store.Option.Prefix, key)
	return store.rdb.Del(context.Background(), key).Err()
}

// Has check if the key exists
func (store *Store) Has(key string) bool {
	key = fmt.Sprintf("%s%s", store.Option.Prefix, key)
	v, _ := store.rdb.Exists(context.Background(), key).Result()
	return v == 1
}

// Len returns the number of stored entries (**not O(1)**)
func (store *Store) Len() int {
	return len(store.Keys())
}

// Keys returns all the keys under the prefix
func (store *Store) Keys() []string {
	prefix := store.Option.Prefix
	keys, err := store.rdb.Keys(context.Background(), prefix+"*").Result()
	if err != nil {
		log.Error("Store redis Keys:%s", err.Error())
		return []string{}
	}

	for i := range keys {
		keys[i] = strings.TrimPrefix(keys[i], prefix)
	}
	return keys
}

// Clear removes every key under the prefix
func (store *Store) Clear() {
	for _, key := range store.Keys() {
		store.Del(key)
	}
}

// Close the client
func (store *Store) Close() error {
	return store.rdb.Close()
}
