// Package worker processes AMQP events off the request path: alert
// notifications and the Google Sheets statement feed.
package worker

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// StatementAppender is satisfied by *export.SheetsClient. Nil disables
// the statement feed.
type StatementAppender interface {
	AppendTransaction(ctx context.Context, txn core.Transaction, categoryName string) error
}

type NotifyWorker struct {
	repo   storage.Repository
	sheets StatementAppender
	logger *log.Logger
}

func NewNotifyWorker(repo storage.Repository, sheets StatementAppender, logger *log.Logger) *NotifyWorker {
	return &NotifyWorker{
		repo:   repo,
		sheets: sheets,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Handle dispatches one event. Unknown kinds are logged and dropped so
// they are not requeued forever.
func (w *NotifyWorker) Handle(ctx context.Context, event *amqp.Event) error {
	switch event.Kind {
	case amqp.EventAlertCreated:
		return w.handleAlertCreated(ctx, event)
	case amqp.EventTransactionCreated:
		return w.handleTransactionCreated(ctx, event)
	default:
		w.logger.WarnContext(ctx, "dropping event of unknown kind", "kind", event.Kind)
		return nil
	}
}

// handleAlertCreated emits a notification log line for the alert. A
// real delivery channel (mail, push) would hang off this point.
func (w *NotifyWorker) handleAlertCreated(ctx context.Context, event *amqp.Event) error {
	alerts, err := w.repo.ListAlertsByOwner(ctx, event.OwnerID)
	if err != nil {
		return fmt.Errorf("list alerts: %w", err)
	}
	for _, alert := range alerts {
		if alert.ID != event.EntityID {
			continue
		}
		w.logger.InfoContext(ctx, "notification",
			log.FieldOwnerID, alert.OwnerID,
			log.FieldAlertID, alert.ID,
			log.FieldSeverity, string(alert.Severity),
			"title", alert.Title,
			"message", alert.Message)
		return nil
	}
	// Alert already gone; nothing to notify about.
	w.logger.WarnContext(ctx, "alert not found for notification",
		log.FieldOwnerID, event.OwnerID,
		log.FieldAlertID, event.EntityID)
	return nil
}

func (w *NotifyWorker) handleTransactionCreated(ctx context.Context, event *amqp.Event) error {
	if w.sheets == nil {
		w.logger.DebugContext(ctx, "statement feed not configured, skipping",
			log.FieldTransactionID, event.EntityID)
		return nil
	}

	txn, err := w.repo.GetTransaction(ctx, event.OwnerID, event.EntityID)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	categoryName := "uncategorized"
	categories, err := w.repo.ListCategories(ctx)
	if err == nil {
		for _, c := range categories {
			if c.ID == txn.CategoryID {
				categoryName = c.Name
				break
			}
		}
	}

	if err := w.sheets.AppendTransaction(ctx, txn, categoryName); err != nil {
		return fmt.Errorf("append statement row: %w", err)
	}
	w.logger.InfoContext(ctx, "statement row appended",
		log.FieldOwnerID, txn.OwnerID,
		log.FieldTransactionID, txn.ID)
	return nil
}
