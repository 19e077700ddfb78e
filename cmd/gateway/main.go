package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"chat-relay/internal/app"
	"chat-relay/internal/chat"
	"chat-relay/internal/httputil"
	"chat-relay/internal/session"
)

type credentialsRequest struct {
	PrimaryKey   string `json:"primary_key" validate:"required"`
	SecondaryKey string `json:"secondary_key" validate:"required"`
}

type messageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/sessions", createSessionHandler(deps))
	r.Get("/api/sessions/{id}", getSessionHandler(deps))
	r.Post("/api/sessions/{id}/credentials", credentialsHandler(deps))
	r.Post("/api/sessions/{id}/messages", messageHandler(deps))
	r.Post("/api/sessions/{id}/end", endHandler(deps))
	r.Post("/api/sessions/{id}/reset", resetHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("gateway listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func createSessionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := deps.Chat.Start(r.Context())
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to create session", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, map[string]any{
			"session_id": sess.ID.String(),
		})
	}
}

func getSessionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := loadSession(deps, w, r)
		if !ok {
			return
		}
		// Credentials are deliberately absent from this view.
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"session_id":           sess.ID.String(),
			"credentials_provided": sess.CredentialsProvided,
			"ended":                sess.Ended,
			"history":              sess.History,
		})
	}
}

func credentialsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := loadSession(deps, w, r)
		if !ok {
			return
		}
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		if err := deps.Chat.SubmitCredentials(r.Context(), sess, req.PrimaryKey, req.SecondaryKey); err != nil {
			writeChatError(deps.Log, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"credentials_provided": true,
		})
	}
}

func messageHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := loadSession(deps, w, r)
		if !ok {
			return
		}
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		reply, err := deps.Chat.Send(r.Context(), sess, req.Text)
		if err != nil {
			writeChatError(deps.Log, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"reply":       reply,
			"history_len": len(sess.History),
		})
	}
}

func endHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := loadSession(deps, w, r)
		if !ok {
			return
		}
		result, err := deps.Chat.End(r.Context(), sess)
		if err != nil {
			writeChatError(deps.Log, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"summary":   result.Summary,
			"sentiment": result.Sentiment,
		})
	}
}

func resetHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := loadSession(deps, w, r)
		if !ok {
			return
		}
		if err := deps.Chat.StartNew(r.Context(), sess); err != nil {
			writeChatError(deps.Log, w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"session_id": sess.ID.String(),
			"ended":      false,
		})
	}
}

// loadSession resolves the {id} URL param to a live session, writing the
// error response itself when it cannot.
func loadSession(deps app.Deps, w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid session id", err, http.StatusBadRequest)
		return nil, false
	}
	sess, err := deps.Sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			httputil.Fail(deps.Log, w, "session not found", err, http.StatusNotFound)
		} else {
			httputil.Fail(deps.Log, w, "failed to load session", err, http.StatusInternalServerError)
		}
		return nil, false
	}
	return sess, true
}

// writeChatError maps the chat error taxonomy onto HTTP statuses. Every
// failure becomes a user-visible response; none is fatal to the process.
func writeChatError(log *slog.Logger, w http.ResponseWriter, err error) {
	var (
		malformed *chat.MalformedCredentialError
		rejected  *chat.CredentialRejectedError
		authErr   *chat.AuthError
		transient *chat.TransientRemoteError
		sumFailed *chat.SummaryFailedError
	)
	switch {
	case errors.Is(err, chat.ErrMissingCredential),
		errors.Is(err, chat.ErrEmptyMessage):
		httputil.Fail(log, w, err.Error(), err, http.StatusBadRequest)
	case errors.As(err, &malformed):
		httputil.Fail(log, w, err.Error(), err, http.StatusBadRequest)
	case errors.As(err, &rejected):
		httputil.Fail(log, w, err.Error(), err, http.StatusUnauthorized)
	case errors.Is(err, chat.ErrNotGated):
		httputil.Fail(log, w, err.Error(), err, http.StatusForbidden)
	case errors.Is(err, chat.ErrSessionEnded),
		errors.Is(err, chat.ErrNotEnded):
		httputil.Fail(log, w, err.Error(), err, http.StatusConflict)
	case errors.As(err, &authErr):
		log.Error(err.Error(), "err", err)
		httputil.WriteJSON(w, http.StatusUnauthorized, map[string]any{
			"error":           err.Error(),
			"reauth_required": true,
		})
	case errors.As(err, &transient):
		httputil.Fail(log, w, err.Error(), err, http.StatusBadGateway)
	case errors.As(err, &sumFailed):
		log.Error(err.Error(), "err", err)
		httputil.WriteJSON(w, http.StatusBadGateway, map[string]any{
			"error": err.Error(),
		})
	default:
		httputil.Fail(log, w, "internal error", err, http.StatusInternalServerError)
	}
}
