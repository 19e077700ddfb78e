package chat

import (
	"errors"
	"fmt"

	"chat-relay/internal/genai"
)

// Precondition sentinels. These never involve the remote services.
var (
	ErrMissingCredential = errors.New("both API keys are required")
	ErrNotGated          = errors.New("credentials must be accepted before chatting")
	ErrSessionEnded      = errors.New("conversation has ended")
	ErrNotEnded          = errors.New("conversation is still active")
	ErrEmptyMessage      = errors.New("message text is empty")
)

// MalformedCredentialError names the key that failed its provider's prefix
// pattern before any remote call was made.
type MalformedCredentialError struct {
	Key    string // "primary" or "secondary"
	Prefix string
}

func (e *MalformedCredentialError) Error() string {
	return fmt.Sprintf("%s API key should start with %q", e.Key, e.Prefix)
}

// CredentialRejectedError means the probe call against the primary service
// failed; the remote error text rides along. The gate stays closed.
type CredentialRejectedError struct {
	Remote error
}

func (e *CredentialRejectedError) Error() string {
	return fmt.Sprintf("API key verification failed: %v", e.Remote)
}

func (e *CredentialRejectedError) Unwrap() error { return e.Remote }

// AuthError means a mid-session chat turn was rejected for a bad credential.
// The session has been demoted back behind the gate; history is intact.
type AuthError struct {
	Remote error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("API key rejected mid-session: %v", e.Remote)
}

func (e *AuthError) Unwrap() error { return e.Remote }

// TransientRemoteError covers every non-credential chat failure (network,
// quota, malformed response). The user message stays in history and the
// session remains chat-capable for another attempt.
type TransientRemoteError struct {
	Remote error
}

func (e *TransientRemoteError) Error() string {
	return fmt.Sprintf("error getting response: %v", e.Remote)
}

func (e *TransientRemoteError) Unwrap() error { return e.Remote }

// SummaryFailedError means the summarization pass failed after the session
// ended. The ended state sticks; the caller shows a failure view.
type SummaryFailedError struct {
	Remote error
}

func (e *SummaryFailedError) Error() string {
	return fmt.Sprintf("error generating summary: %v", e.Remote)
}

func (e *SummaryFailedError) Unwrap() error { return e.Remote }

// isCredentialFailure reports whether a remote error means the key itself
// was rejected, which decides AuthError versus TransientRemoteError.
func isCredentialFailure(err error) bool {
	var apiErr *genai.APIError
	return errors.As(err, &apiErr) && apiErr.InvalidCredential()
}
