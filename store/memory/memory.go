package memory

import (
	"sync"
	"time"
)

// Memory an in-process map store, values never expire
type Memory struct {
	mu   sync.RWMutex
	data map[string]interface{}
}

// New create a memory store
func New() *Memory {
	return &Memory{data: map[string]interface{}{}}
}

// Get retrieves a value
func (m *Memory) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, has := m.data[key]
	return value, has
}

// Set stores a value, ttl is ignored
func (m *Memory) Set(key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

// Del removes a value
func (m *Memory) Del(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Has check if the key exists
func (m *Memory) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, has := m.data[key]
	return has
}

// Len the number of entries
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Keys all the keys
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	return keys
}

// Clear removes all values
func (m *Memory) Clear() {
	m.mu.Lock()
	m.data = map[string]interface{}{}
	m.mu.Unlock()
}

// Close nothing to release
func (m *Memory) Close() error {
	return nil
}
