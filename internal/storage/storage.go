// Package storage provides the persistent key-value blob store backing the
// chat history. Values are opaque strings; the chat layer decides the format.
package storage

import "sync"

// Storage abstracts persistent key-value blob storage (file, SQLite, etc.).
type Storage interface {
	// Get returns the value for key. The second return is false when the
	// key has never been written.
	Get(key string) (string, bool, error)

	// Set overwrites the value for key. The write is durable on return.
	Set(key, value string) error

	Close() error
}

// MemStorage is a map-backed Storage used as a test double.
type MemStorage struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemStorage() *MemStorage {
	return &MemStorage{data: make(map[string]string)}
}

func (m *MemStorage) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemStorage) Close() error { return nil }
