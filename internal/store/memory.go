package store

import "sync"

// MemoryBackend is the last-resort backend: a concurrency-safe in-process
// map. Everything in it is lost when the process exits.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]string
	quota int
}

// NewMemoryBackend creates a MemoryBackend. quotaBytes <= 0 means
// unlimited.
func NewMemoryBackend(quotaBytes int) *MemoryBackend {
	return &MemoryBackend{
		items: make(map[string]string),
		quota: quotaBytes,
	}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryBackend) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if quotaFor(m.sizes(), key, value, m.quota) {
		return ErrQuotaExceeded
	}
	m.items[key] = value
	return nil
}

func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// Len reports how many keys are stored, for the shutdown data-loss check.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryBackend) sizes() map[string]int {
	sizes := make(map[string]int, len(m.items))
	for k, v := range m.items {
		sizes[k] = len(v)
	}
	return sizes
}
