package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage/memory"
)

type capturingPublisher struct {
	events []*amqp.Event
	err    error
}

func (p *capturingPublisher) Publish(_ context.Context, event *amqp.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal.NewFromString(%q) error = %v", s, err)
	}
	return d
}

func newService(t *testing.T, pub EventPublisher) (*TransactionService, *memory.Store) {
	t.Helper()
	store := memory.NewSeeded()
	svc := NewTransactionService(store, pub, testLogger())
	svc.now = func() time.Time {
		return time.Date(2026, time.April, 20, 10, 0, 0, 0, time.UTC)
	}
	return svc, store
}

func TestCreatePersistsAndPublishes(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{}
	svc, store := newService(t, pub)

	txn := core.Transaction{
		OwnerID:     1,
		CategoryID:  3,
		Amount:      amount(t, "25.00"),
		Date:        time.Date(2026, time.April, 18, 0, 0, 0, 0, time.UTC),
		Description: "groceries",
	}
	if err := svc.Create(ctx, &txn); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if txn.ID == 0 {
		t.Fatal("Create() did not assign an ID")
	}

	got, err := store.GetTransaction(ctx, 1, txn.ID)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.Description != "groceries" {
		t.Fatalf("stored description = %q, want groceries", got.Description)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	if pub.events[0].Kind != amqp.EventTransactionCreated {
		t.Fatalf("event kind = %q, want %q", pub.events[0].Kind, amqp.EventTransactionCreated)
	}
}

func TestCreateRaisesBudgetAlert(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{}
	svc, store := newService(t, pub)

	budget := core.Budget{
		OwnerID:    1,
		CategoryID: 3,
		Limit:      amount(t, "100.00"),
		Period:     core.PeriodMonthly,
	}
	if err := store.CreateBudget(ctx, &budget); err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}

	txn := core.Transaction{
		OwnerID:     1,
		CategoryID:  3,
		Amount:      amount(t, "150.00"),
		Date:        time.Date(2026, time.April, 18, 0, 0, 0, 0, time.UTC),
		Description: "overspend",
	}
	if err := svc.Create(ctx, &txn); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	alerts, err := store.ListAlertsByOwner(ctx, 1)
	if err != nil {
		t.Fatalf("ListAlertsByOwner() error = %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if alerts[0].Severity != core.SeverityError {
		t.Fatalf("alert severity = %q, want %q", alerts[0].Severity, core.SeverityError)
	}

	// transaction.created plus alert.created
	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	if pub.events[1].Kind != amqp.EventAlertCreated {
		t.Fatalf("second event kind = %q, want %q", pub.events[1].Kind, amqp.EventAlertCreated)
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{err: errors.New("broker down")}
	svc, store := newService(t, pub)

	txn := core.Transaction{
		OwnerID:     1,
		CategoryID:  3,
		Amount:      amount(t, "10.00"),
		Date:        time.Date(2026, time.April, 18, 0, 0, 0, 0, time.UTC),
		Description: "coffee",
	}
	if err := svc.Create(ctx, &txn); err != nil {
		t.Fatalf("Create() error = %v, want nil despite publish failure", err)
	}
	if _, err := store.GetTransaction(ctx, 1, txn.ID); err != nil {
		t.Fatalf("transaction not persisted: %v", err)
	}
}

func TestCreateWithNilPublisher(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, nil)

	txn := core.Transaction{
		OwnerID:     1,
		CategoryID:  3,
		Amount:      amount(t, "10.00"),
		Date:        time.Date(2026, time.April, 18, 0, 0, 0, 0, time.UTC),
		Description: "coffee",
	}
	if err := svc.Create(ctx, &txn); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	pub := &capturingPublisher{}
	svc, store := newService(t, pub)

	txn := core.Transaction{
		OwnerID:    1,
		CategoryID: 3,
		Amount:     amount(t, "-5.00"),
		Date:       time.Date(2026, time.April, 18, 0, 0, 0, 0, time.UTC),
	}
	if err := svc.Create(ctx, &txn); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("Create() error = %v, want ErrInvalidAmount", err)
	}

	txns, err := store.ListTransactionsByOwner(ctx, 1)
	if err != nil {
		t.Fatalf("ListTransactionsByOwner() error = %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("invalid transaction was persisted, got %d", len(txns))
	}
	if len(pub.events) != 0 {
		t.Fatalf("published %d events for invalid transaction", len(pub.events))
	}
}

func TestSummaryAndBudgetStatuses(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, nil)

	budget := core.Budget{OwnerID: 1, CategoryID: 3, Limit: amount(t, "200.00"), Period: core.PeriodMonthly}
	if err := store.CreateBudget(ctx, &budget); err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}
	txn := core.Transaction{
		OwnerID:     1,
		CategoryID:  3,
		Amount:      amount(t, "50.00"),
		Date:        time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC),
		Description: "food",
	}
	if err := svc.Create(ctx, &txn); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	sum, err := svc.Summary(ctx, 1)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if !sum.MonthlyExpenses.Equal(amount(t, "50.00")) {
		t.Fatalf("MonthlyExpenses = %s, want 50.00", sum.MonthlyExpenses)
	}

	statuses, err := svc.BudgetStatuses(ctx, 1)
	if err != nil {
		t.Fatalf("BudgetStatuses() error = %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("got %d budget statuses, want 1", len(statuses))
	}
	if statuses[0].Percentage != 25 {
		t.Fatalf("Percentage = %v, want 25", statuses[0].Percentage)
	}
}
