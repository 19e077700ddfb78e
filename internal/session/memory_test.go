package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("unexpected error creating session: %v", err)
	}

	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("unexpected error getting session: %v", err)
	}
	if got.ID != s.ID {
		t.Errorf("expected session %s, got %s", s.ID, got.ID)
	}

	s.Append(RoleUser, "hi")
	s.PrimaryKey = "AIza_valid"
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("unexpected error saving session: %v", err)
	}

	got, err = store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("unexpected error after save: %v", err)
	}
	if len(got.History) != 1 {
		t.Errorf("expected 1 message, got %d", len(got.History))
	}
	if got.PrimaryKey != "AIza_valid" {
		t.Error("expected key to survive save/get")
	}

	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("unexpected error deleting session: %v", err)
	}
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}

	// Delete is idempotent
	if err := store.Delete(ctx, s.ID); err != nil {
		t.Errorf("expected idempotent delete, got %v", err)
	}

	if err := store.Close(); err != nil {
		t.Errorf("expected no error on close, got %v", err)
	}
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}
