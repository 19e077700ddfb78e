// Package chat implements the conversation state machine: the credential
// gate, the per-turn relay to the primary completion API, and the end-of-
// session transition into summarization. All methods are plain synchronous
// calls on an explicitly passed session; any front end can re-render around
// them as it sees fit.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chat-relay/internal/events"
	"chat-relay/internal/genai"
	"chat-relay/internal/session"
	"chat-relay/internal/summarizer"
)

const (
	primaryKeyPrefix   = "AIza"
	secondaryKeyPrefix = "sk-"

	// probePrompt is the minimal prompt used to verify a key against the
	// primary service. Probes always run with safety filters relaxed so a
	// filter block cannot masquerade as a bad key.
	probePrompt = "Test"
)

// Service wires the session store, both completion clients, and the event
// publisher into the conversation lifecycle.
type Service struct {
	store             session.Store
	genai             genai.Client
	summarizer        summarizer.Client
	events            events.Publisher
	relaxedChatSafety bool
	log               *slog.Logger

	// One in-flight operation per session: each user-triggered event is
	// handled to completion before the next is accepted.
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

func (s *Service) lock(id uuid.UUID) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// NewService builds the chat service. relaxedChatSafety applies the probe's
// relaxed safety configuration to regular chat turns as well.
func NewService(store session.Store, gen genai.Client, sum summarizer.Client, pub events.Publisher, relaxedChatSafety bool, log *slog.Logger) *Service {
	return &Service{
		store:             store,
		genai:             gen,
		summarizer:        sum,
		events:            pub,
		relaxedChatSafety: relaxedChatSafety,
		log:               log,
	}
}

// Start creates and registers a fresh ungated session.
func (s *Service) Start(ctx context.Context) (*session.Session, error) {
	sess, err := s.store.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.publish(ctx, events.TypeSessionCreated, sess)
	return sess, nil
}

// SubmitCredentials validates both keys, probes the primary service with a
// single best-effort call, and opens the gate on success. On any failure the
// session stays ungated and nothing is stored.
func (s *Service) SubmitCredentials(ctx context.Context, sess *session.Session, primaryKey, secondaryKey string) error {
	defer s.lock(sess.ID)()

	primaryKey = strings.TrimSpace(primaryKey)
	secondaryKey = strings.TrimSpace(secondaryKey)

	if primaryKey == "" || secondaryKey == "" {
		return ErrMissingCredential
	}
	if !strings.HasPrefix(primaryKey, primaryKeyPrefix) {
		return &MalformedCredentialError{Key: "primary", Prefix: primaryKeyPrefix}
	}
	if !strings.HasPrefix(secondaryKey, secondaryKeyPrefix) {
		return &MalformedCredentialError{Key: "secondary", Prefix: secondaryKeyPrefix}
	}

	// One probe, no retry.
	if _, err := s.genai.Generate(ctx, primaryKey, probePrompt, true); err != nil {
		return &CredentialRejectedError{Remote: err}
	}

	sess.PrimaryKey = primaryKey
	sess.SecondaryKey = secondaryKey
	sess.CredentialsProvided = true
	if err := s.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.log.Info("credentials accepted", "session_id", sess.ID)
	s.publish(ctx, events.TypeCredentialsAccepted, sess)
	return nil
}

// Send relays one user turn to the primary completion API and appends the
// assistant reply. The user message is appended before the remote call so a
// failed turn still records what the user said. Each turn is stateless from
// the remote model's point of view: only the new text crosses the wire.
func (s *Service) Send(ctx context.Context, sess *session.Session, text string) (session.Message, error) {
	defer s.lock(sess.ID)()

	if !sess.CredentialsProvided {
		return session.Message{}, ErrNotGated
	}
	if sess.Ended {
		return session.Message{}, ErrSessionEnded
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return session.Message{}, ErrEmptyMessage
	}

	sess.Append(session.RoleUser, text)
	if err := s.store.Save(ctx, sess); err != nil {
		return session.Message{}, fmt.Errorf("save session: %w", err)
	}

	replyText, err := s.genai.Generate(ctx, sess.PrimaryKey, text, s.relaxedChatSafety)
	if err != nil {
		if isCredentialFailure(err) {
			// Revoked key: force re-entry through the gate, keep history.
			sess.CredentialsProvided = false
			if saveErr := s.store.Save(ctx, sess); saveErr != nil {
				s.log.Error("failed to save demoted session", "session_id", sess.ID, "err", saveErr)
			}
			s.log.Warn("credential rejected mid-session", "session_id", sess.ID)
			return session.Message{}, &AuthError{Remote: err}
		}
		return session.Message{}, &TransientRemoteError{Remote: err}
	}

	reply := sess.Append(session.RoleAssistant, replyText)
	if err := s.store.Save(ctx, sess); err != nil {
		return session.Message{}, fmt.Errorf("save session: %w", err)
	}

	s.publish(ctx, events.TypeTurnCompleted, sess)
	return reply, nil
}

// End moves the session into its terminal state and runs the summarization
// pass. The transition is idempotent; the summary is recomputed on every
// call. A summarization failure leaves the session ended.
func (s *Service) End(ctx context.Context, sess *session.Session) (summarizer.Result, error) {
	defer s.lock(sess.ID)()

	if !sess.Ended {
		sess.Ended = true
		if err := s.store.Save(ctx, sess); err != nil {
			return summarizer.Result{}, fmt.Errorf("save session: %w", err)
		}
		s.log.Info("conversation ended", "session_id", sess.ID, "turns", len(sess.History))
		s.publish(ctx, events.TypeSessionEnded, sess)
	}

	if len(sess.History) == 0 {
		return summarizer.Empty(), nil
	}

	result, err := s.summarizer.Summarize(ctx, sess.SecondaryKey, sess.Transcript())
	if err != nil {
		return summarizer.Result{}, &SummaryFailedError{Remote: err}
	}
	return result, nil
}

// StartNew resets the session for a fresh conversation: history and the
// ended flag are cleared, both stored keys survive. Only an ended
// conversation can be reset; a live one must go through End first so a
// stray reset cannot wipe it.
func (s *Service) StartNew(ctx context.Context, sess *session.Session) error {
	defer s.lock(sess.ID)()

	if !sess.Ended {
		return ErrNotEnded
	}
	sess.Reset()
	if err := s.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.publish(ctx, events.TypeSessionReset, sess)
	return nil
}

func (s *Service) publish(ctx context.Context, typ events.Type, sess *session.Session) {
	ev := events.Event{
		Type:      typ,
		SessionID: sess.ID,
		Turns:     len(sess.History),
		At:        time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("failed to publish lifecycle event", "type", typ, "session_id", sess.ID, "err", err)
	}
}
