package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage/memory"
)

func newTestUser(t *testing.T, store *memory.Store) core.User {
	t.Helper()
	u := core.User{Email: "mara@example.edu", PasswordHash: "x", Name: "Mara"}
	if err := store.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return u
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	user := newTestUser(t, store)

	sessions := NewSessions(store, time.Hour)
	token, err := sessions.Issue(ctx, user.ID)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	got, err := sessions.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("Resolve() user = %d, want %d", got.ID, user.ID)
	}

	if err := sessions.Revoke(ctx, token); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if _, err := sessions.Resolve(ctx, token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Resolve() after revoke error = %v, want ErrInvalidSession", err)
	}
}

func TestResolveRejectsExpired(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	user := newTestUser(t, store)

	sessions := NewSessions(store, time.Minute)
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return base }

	token, err := sessions.Issue(ctx, user.ID)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	sessions.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := sessions.Resolve(ctx, token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Resolve() expired error = %v, want ErrInvalidSession", err)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(memory.New(), time.Hour)

	if _, err := sessions.Resolve(ctx, ""); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Resolve(\"\") error = %v, want ErrInvalidSession", err)
	}
	if _, err := sessions.Resolve(ctx, "no-such-token"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Resolve() unknown token error = %v, want ErrInvalidSession", err)
	}
}
