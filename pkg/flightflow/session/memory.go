package session

import (
	"sync"
	"time"
)

// MemoryStore is an in-memory session store.
// Data is lost when the process exits; use SQLiteStore when sessions must
// survive restarts.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]storedSession
	closed bool
}

type storedSession struct {
	data      []byte
	updatedAt time.Time
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]storedSession),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(sessionID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	// Copy to avoid retaining the caller's slice
	stored := make([]byte, len(data))
	copy(stored, data)

	m.data[sessionID] = storedSession{
		data:      stored,
		updatedAt: time.Now().UTC(),
	}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(sessionID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	s, ok := m.data[sessionID]
	if !ok {
		return nil, ErrNotFound
	}

	result := make([]byte, len(s.data))
	copy(result, s.data)
	return result, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, sessionID)
	return nil
}

// DeleteExpired implements Store.
func (m *MemoryStore) DeleteExpired(cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrStoreClosed
	}

	removed := 0
	for id, s := range m.data {
		if s.updatedAt.Before(cutoff) {
			delete(m.data, id)
			removed++
		}
	}
	return removed, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the number of stored sessions. Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
