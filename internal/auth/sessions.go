package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// ErrInvalidSession is returned for unknown, expired, or revoked tokens.
var ErrInvalidSession = errors.New("invalid session")

// Sessions issues and resolves opaque session tokens backed by the
// repository. Tokens are random UUIDs, never derived from user data.
type Sessions struct {
	repo storage.Repository
	ttl  time.Duration
	now  func() time.Time
}

func NewSessions(repo storage.Repository, ttl time.Duration) *Sessions {
	return &Sessions{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

// Issue creates a new session for the user and returns its token.
func (s *Sessions) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	sess := storage.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// Resolve returns the user behind a session token.
func (s *Sessions) Resolve(ctx context.Context, token string) (core.User, error) {
	if token == "" {
		return core.User{}, ErrInvalidSession
	}
	sess, err := s.repo.GetSession(ctx, token)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, ErrInvalidSession
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get session: %w", err)
	}
	if sess.Revoked || s.now().After(sess.ExpiresAt) {
		return core.User{}, ErrInvalidSession
	}
	user, err := s.repo.GetUser(ctx, sess.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, ErrInvalidSession
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get session user: %w", err)
	}
	return user, nil
}

// Revoke invalidates a token. Revoking an unknown token is not an error.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	return s.repo.RevokeSession(ctx, token)
}
