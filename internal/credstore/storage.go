package credstore

import "sync"

// SessionStorage is session-scoped key/value storage for the redacted
// credential snapshot. Get returns (nil, nil) for a missing entry.
// sessionfile.Dir satisfies it; MemoryStorage is the process-local variant.
type SessionStorage interface {
	Get(name string) ([]byte, error)
	Set(name string, data []byte) error
	Remove(name string) error
}

// MemoryStorage is a process-local SessionStorage.
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string][]byte)}
}

// Get implements SessionStorage.
func (m *MemoryStorage) Get(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.entries[name]
	if !ok {
		return nil, nil
	}

	return append([]byte(nil), data...), nil
}

// Set implements SessionStorage.
func (m *MemoryStorage) Set(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[name] = append([]byte(nil), data...)

	return nil
}

// Remove implements SessionStorage.
func (m *MemoryStorage) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, name)

	return nil
}
