package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Store keeps live sessions keyed by ID. Implementations must be safe for
// concurrent use; within a single session the caller serializes mutations.
type Store interface {
	// Create allocates a fresh session and registers it.
	Create(ctx context.Context) (*Session, error)

	// Get returns the session for id, or ErrSessionNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Session, error)

	// Save persists the session's current state.
	Save(ctx context.Context, s *Session) error

	// Delete removes the session. Idempotent.
	Delete(ctx context.Context, id uuid.UUID) error

	// Close releases any underlying connection.
	Close() error
}
