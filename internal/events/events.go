package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type enumerates session lifecycle transitions.
type Type string

const (
	TypeSessionCreated      Type = "session_created"
	TypeCredentialsAccepted Type = "credentials_accepted"
	TypeTurnCompleted       Type = "turn_completed"
	TypeSessionEnded        Type = "session_ended"
	TypeSessionReset        Type = "session_reset"
)

// Event is a content-free lifecycle notification. It deliberately carries no
// message text and no credentials, only the session ID and a turn count.
type Event struct {
	Type      Type      `json:"type"`
	SessionID uuid.UUID `json:"session_id"`
	Turns     int       `json:"turns"`
	At        time.Time `json:"at"`
}

// Publisher emits lifecycle events for observability. Publish failures are
// logged by callers and never surfaced to the user.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}
