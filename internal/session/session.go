package session

import (
	"strings"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn half. Immutable once appended; chronological order in
// History is significant because it defines the transcript fed to the
// summarizer.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is one user's in-memory conversation state, from credential entry
// to reset. History is append-only while the session is live; only Reset
// clears it. The two keys are held in process memory only and must never be
// logged or serialized.
type Session struct {
	ID                  uuid.UUID
	CredentialsProvided bool
	Ended               bool
	PrimaryKey          string
	SecondaryKey        string
	History             []Message
}

// New returns a fresh ungated session with an empty history.
func New() *Session {
	return &Session{
		ID:      uuid.New(),
		History: []Message{},
	}
}

// Append records a message and returns it. The history grows strictly at the
// tail; existing entries are never touched.
func (s *Session) Append(role Role, content string) Message {
	msg := Message{Role: role, Content: content}
	s.History = append(s.History, msg)
	return msg
}

// Reset clears the conversation and the ended flag but keeps both stored
// keys, so the user can start a new conversation without re-entering them.
func (s *Session) Reset() {
	s.History = []Message{}
	s.Ended = false
}

// Transcript renders the history one line per message as "<role>: <content>"
// in chronological order.
func (s *Session) Transcript() string {
	lines := make([]string, len(s.History))
	for i, msg := range s.History {
		lines[i] = string(msg.Role) + ": " + msg.Content
	}
	return strings.Join(lines, "\n")
}
