package repository

import "context"

// EntryRepository persists raw values of a session-scoped namespace.
// Implementations must be safe for concurrent use.
type EntryRepository interface {
	// Get returns the stored value or ErrNotFound
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, sessionID, key string, value []byte) error
	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, sessionID, key string) error
	// Clear removes every key of the session
	Clear(ctx context.Context, sessionID string) error
}
