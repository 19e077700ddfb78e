package genai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Client is the primary completion API contract. Each call carries exactly
// one prompt string; no conversation history crosses the wire. The key is a
// parameter because it belongs to the session, not the process.
type Client interface {
	Generate(ctx context.Context, apiKey, prompt string, relaxedSafety bool) (string, error)
}

// APIError is a non-2xx response from the remote service.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("genai: api error %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// InvalidCredential reports whether the failure means the API key itself was
// rejected, as opposed to a quota, safety, or server problem. The service
// signals a bad key with 401/403, or a 400 whose message names the key.
func (e *APIError) InvalidCredential() bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	case http.StatusBadRequest:
		return strings.Contains(e.Message, "API key")
	}
	return false
}
