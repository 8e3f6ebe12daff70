package session

import (
	"context"
	"sync"
)

type memoryBackend struct {
	mu    sync.RWMutex
	items map[string][]Item
}

// NewMemoryStore returns a process-local store.
func NewMemoryStore() Store {
	return newStore(&memoryBackend{items: map[string][]Item{}})
}

func (m *memoryBackend) create(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		m.items[id] = []Item{}
	}
	return nil
}

func (m *memoryBackend) exists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[id]
	return ok, nil
}

func (m *memoryBackend) load(_ context.Context, id string) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]Item(nil), stored...), nil
}

func (m *memoryBackend) append(_ context.Context, id string, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = append(m.items[id], items...)
	return nil
}

func (m *memoryBackend) close() error { return nil }
