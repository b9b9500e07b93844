// Package storage defines the repository contract the engine and handlers
// depend on, with swappable backends: SQLite for production, in-memory for
// tests and development. Identity generation belongs to the backend, never
// to ambient process-wide state.
package storage

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/core"
)

// ErrNotFound is returned when a row does not exist or belongs to another
// owner.
var ErrNotFound = errors.New("not found")

// Session is a server-side login session keyed by an opaque token.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *core.User) error
	GetUser(ctx context.Context, id int64) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string) error
}

type CategoryRepository interface {
	// ListCategories returns the global category list, shared by all users.
	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, c *core.Category) error
}

type TransactionRepository interface {
	CreateTransaction(ctx context.Context, t *core.Transaction) error
	GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, ownerID, id int64) error
	ListTransactionsByOwner(ctx context.Context, ownerID int64) ([]core.Transaction, error)
}

type BudgetRepository interface {
	CreateBudget(ctx context.Context, b *core.Budget) error
	UpdateBudget(ctx context.Context, b core.Budget) error
	DeleteBudget(ctx context.Context, ownerID, id int64) error
	ListBudgetsByOwner(ctx context.Context, ownerID int64) ([]core.Budget, error)
}

type AlertRepository interface {
	CreateAlert(ctx context.Context, a *core.Alert) error
	// ListAlertsByOwner returns alerts newest first.
	ListAlertsByOwner(ctx context.Context, ownerID int64) ([]core.Alert, error)
	// MarkAlertRead flips the read flag; alerts are otherwise append-only.
	MarkAlertRead(ctx context.Context, ownerID, id int64) error
}

type ForumRepository interface {
	CreateTopic(ctx context.Context, t *core.ForumTopic) error
	GetTopic(ctx context.Context, id int64) (core.ForumTopic, error)
	ListTopics(ctx context.Context) ([]core.ForumTopic, error)
	CreateReply(ctx context.Context, r *core.ForumReply) error
	ListRepliesByTopic(ctx context.Context, topicID int64) ([]core.ForumReply, error)
}

type DealRepository interface {
	CreateDeal(ctx context.Context, d *core.Deal) error
	ListDeals(ctx context.Context) ([]core.Deal, error)
	// DeleteDeal removes the deal when it belongs to ownerID.
	// An ownerID of zero disables the owner check (admin moderation).
	DeleteDeal(ctx context.Context, ownerID, id int64) error
}

type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) ([]core.Setting, error)
}

// Repository is the full persistence contract.
type Repository interface {
	UserRepository
	SessionRepository
	CategoryRepository
	TransactionRepository
	BudgetRepository
	AlertRepository
	ForumRepository
	DealRepository
	SettingsRepository
	Close() error
}
