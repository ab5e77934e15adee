// Package history keeps a short list of recent search queries in a key-value store.
package history

import (
	"sync"
)

// KeyValueStore is the persistence capability History needs.
// Get reports ok=false when the key is absent.
type KeyValueStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	// Update replaces the value of key with the result of fn, applied to the
	// current value. Concurrent Updates of one key never lose a write.
	Update(key string, fn func(old string, ok bool) (string, error)) error
}

// MemoryStore is an in-process KeyValueStore.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Update(key string, fn func(old string, ok bool) (string, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.data[key]
	value, err := fn(old, ok)
	if err != nil {
		return err
	}
	m.data[key] = value
	return nil
}
