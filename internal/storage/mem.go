package storage

import "sync"

// MemKV is an in-memory KV used by tests and as a fallback when no
// durable state path is configured. Contents do not survive the process.
type MemKV struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemKV creates an empty in-memory store.
func NewMemKV() *MemKV {
	return &MemKV{values: make(map[string]string)}
}

// Get returns the stored value for key and whether it was present.
func (m *MemKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok, nil
}

// Set stores value under key, overwriting any previous value.
func (m *MemKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
