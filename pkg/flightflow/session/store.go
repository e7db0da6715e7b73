// Package session provides persistent session storage so conversations
// survive process restarts between turns.
package session

import (
	"errors"
	"time"
)

// Store persists serialized sessions keyed by session ID.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a session, overwriting any previous value for the ID.
	Save(sessionID string, data []byte) error

	// Load retrieves a session.
	// Returns ErrNotFound if the session doesn't exist.
	Load(sessionID string) ([]byte, error)

	// Delete removes a session.
	// Returns nil if the session doesn't exist.
	Delete(sessionID string) error

	// DeleteExpired removes sessions not updated since the cutoff and
	// returns how many were removed.
	DeleteExpired(cutoff time.Time) (int, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for session storage.
var (
	// ErrNotFound indicates a session doesn't exist.
	ErrNotFound = errors.New("session not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("session store closed")
)
