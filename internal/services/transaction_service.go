// Package services orchestrates domain operations across storage, the
// budget engine, and AMQP eventing.
package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// EventPublisher is satisfied by *amqp.Client. A nil publisher disables
// eventing; the service logs a warning and carries on.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.Event) error
}

// TransactionService persists transactions and runs budget evaluation
// on every create. Persistence failures fail the call; alert and
// publish failures are logged and swallowed so the transaction always
// lands.
type TransactionService struct {
	repo      storage.Repository
	publisher EventPublisher
	logger    *log.Logger
	now       func() time.Time
}

func NewTransactionService(repo storage.Repository, publisher EventPublisher, logger *log.Logger) *TransactionService {
	return &TransactionService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentEngine),
		now:       time.Now,
	}
}

// Create validates and stores the transaction, then evaluates budget
// alerts against the month's spending, which already includes the new
// transaction.
func (s *TransactionService) Create(ctx context.Context, txn *core.Transaction) error {
	if err := txn.Validate(); err != nil {
		return err
	}
	if err := s.repo.CreateTransaction(ctx, txn); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	s.evaluateAlert(ctx, *txn)
	s.publish(ctx, amqp.NewTransactionCreatedEvent(txn.OwnerID, txn.ID))
	return nil
}

func (s *TransactionService) Update(ctx context.Context, txn core.Transaction) error {
	if err := txn.Validate(); err != nil {
		return err
	}
	if err := s.repo.UpdateTransaction(ctx, txn); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (s *TransactionService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.repo.DeleteTransaction(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// Summary aggregates the owner's transactions and budgets as of now.
func (s *TransactionService) Summary(ctx context.Context, ownerID int64) (core.Summary, error) {
	txns, err := s.repo.ListTransactionsByOwner(ctx, ownerID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list transactions: %w", err)
	}
	budgets, err := s.repo.ListBudgetsByOwner(ctx, ownerID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list budgets: %w", err)
	}
	return core.Summarize(txns, budgets, s.now()), nil
}

// BudgetStatuses reports per-budget spending for the current month.
func (s *TransactionService) BudgetStatuses(ctx context.Context, ownerID int64) ([]core.BudgetStatus, error) {
	budgets, err := s.repo.ListBudgetsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	txns, err := s.repo.ListTransactionsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return core.ProjectBudgets(budgets, txns, categories, s.now()), nil
}

func (s *TransactionService) evaluateAlert(ctx context.Context, txn core.Transaction) {
	budgets, err := s.repo.ListBudgetsByOwner(ctx, txn.OwnerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "budget lookup failed during alert evaluation",
			log.FieldError, err,
			log.FieldOwnerID, txn.OwnerID)
		return
	}
	txns, err := s.repo.ListTransactionsByOwner(ctx, txn.OwnerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "transaction lookup failed during alert evaluation",
			log.FieldError, err,
			log.FieldOwnerID, txn.OwnerID)
		return
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "category lookup failed during alert evaluation",
			log.FieldError, err,
			log.FieldOwnerID, txn.OwnerID)
		return
	}

	draft, ok := core.EvaluateBudgetAlert(txn, budgets, txns, categories, s.now())
	if !ok {
		return
	}

	alert := core.Alert{
		OwnerID:  txn.OwnerID,
		Title:    draft.Title,
		Message:  draft.Message,
		Severity: draft.Severity,
	}
	if err := s.repo.CreateAlert(ctx, &alert); err != nil {
		s.logger.ErrorContext(ctx, "failed to store budget alert",
			log.FieldError, err,
			log.FieldOwnerID, txn.OwnerID,
			log.FieldSeverity, string(draft.Severity))
		return
	}

	s.logger.InfoContext(ctx, "budget alert raised",
		log.FieldOwnerID, txn.OwnerID,
		log.FieldAlertID, alert.ID,
		log.FieldSeverity, string(draft.Severity))

	s.publish(ctx, amqp.NewAlertCreatedEvent(alert.OwnerID, alert.ID))
}

func (s *TransactionService) publish(ctx context.Context, event *amqp.Event) {
	if s.publisher == nil {
		s.logger.WarnContext(ctx, "AMQP client not available, skipping event",
			log.FieldOperation, log.OpPublish)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event",
			log.FieldError, err,
			log.FieldOperation, log.OpPublish)
	}
}
