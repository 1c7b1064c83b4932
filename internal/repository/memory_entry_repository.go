package repository

import (
	"context"
	"sync"
)

// MemoryEntryRepository keeps session namespaces in process memory
type MemoryEntryRepository struct {
	mu       sync.RWMutex
	sessions map[string]map[string][]byte
}

// NewMemoryEntryRepository creates an empty MemoryEntryRepository
func NewMemoryEntryRepository() *MemoryEntryRepository {
	return &MemoryEntryRepository{sessions: make(map[string]map[string][]byte)}
}

// Get returns a copy of the stored value
func (r *MemoryEntryRepository) Get(_ context.Context, sessionID, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.sessions[sessionID][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set stores a copy of value
func (r *MemoryEntryRepository) Set(_ context.Context, sessionID, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, ok := r.sessions[sessionID]
	if !ok {
		entries = make(map[string][]byte)
		r.sessions[sessionID] = entries
	}
	entries[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key from the session
func (r *MemoryEntryRepository) Delete(_ context.Context, sessionID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions[sessionID], key)
	return nil
}

// Clear drops the whole session
func (r *MemoryEntryRepository) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

// Keys lists the keys stored for a session
func (r *MemoryEntryRepository) Keys(sessionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.sessions[sessionID]))
	for k := range r.sessions[sessionID] {
		keys = append(keys, k)
	}
	return keys
}
