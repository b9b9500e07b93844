package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func newTxn(owner, category int64, amt string, day int) core.Transaction {
	d, _ := decimal.NewFromString(amt)
	return core.Transaction{
		OwnerID:     owner,
		CategoryID:  category,
		Amount:      d,
		Date:        time.Date(2025, 5, day, 0, 0, 0, 0, time.UTC),
		Description: "test",
	}
}

func TestTransactionCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	tx := newTxn(1, 2, "10.50", 1)
	if err := s.CreateTransaction(ctx, &tx); err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	got, err := s.GetTransaction(ctx, 1, tx.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.String() != "10.5" {
		t.Fatalf("amount: got %s", got.Amount)
	}

	// Other owners cannot see or touch it.
	if _, err := s.GetTransaction(ctx, 99, tx.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("cross-owner get: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, 99, tx.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("cross-owner delete: expected ErrNotFound, got %v", err)
	}

	tx.Description = "updated"
	if err := s.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := s.DeleteTransaction(ctx, 1, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTransaction(ctx, 1, tx.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListTransactionsByOwnerSorted(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, day := range []int{3, 1, 5} {
		tx := newTxn(1, 1, "1", day)
		if err := s.CreateTransaction(ctx, &tx); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	other := newTxn(2, 1, "1", 4)
	if err := s.CreateTransaction(ctx, &other); err != nil {
		t.Fatalf("create: %v", err)
	}

	txns, err := s.ListTransactionsByOwner(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("expected 3 owner transactions, got %d", len(txns))
	}
	for i := 1; i < len(txns); i++ {
		if txns[i].Date.After(txns[i-1].Date) {
			t.Fatalf("transactions not sorted newest first")
		}
	}
}

func TestAlertsNewestFirstAndMarkRead(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		a := core.Alert{
			OwnerID:   1,
			Title:     "Budget Warning: Food",
			Message:   "m",
			Severity:  core.SeverityWarning,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.CreateAlert(ctx, &a); err != nil {
			t.Fatalf("create alert: %v", err)
		}
	}

	alerts, err := s.ListAlertsByOwner(ctx, 1)
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	if !alerts[0].CreatedAt.After(alerts[2].CreatedAt) {
		t.Fatalf("alerts not newest first")
	}
	if alerts[0].Read {
		t.Fatalf("read flag should default to false")
	}

	if err := s.MarkAlertRead(ctx, 1, alerts[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	alerts, _ = s.ListAlertsByOwner(ctx, 1)
	if !alerts[0].Read {
		t.Fatalf("expected read flag set")
	}

	if err := s.MarkAlertRead(ctx, 2, alerts[0].ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("cross-owner mark read: expected ErrNotFound, got %v", err)
	}
}

func TestSeededCategories(t *testing.T) {
	s := NewSeeded()
	cats, err := s.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != 7 {
		t.Fatalf("expected 7 seeded categories, got %d", len(cats))
	}
	types := map[core.CategoryType]bool{}
	for _, c := range cats {
		types[c.Type] = true
	}
	for _, want := range []core.CategoryType{core.CategoryFixed, core.CategoryVariable, core.CategoryDiscretionary, core.CategoryIncome} {
		if !types[want] {
			t.Fatalf("missing seeded category type %s", want)
		}
	}
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	s := New()

	sess := storage.Session{Token: "tok", UserID: 7, ExpiresAt: time.Now().Add(time.Hour)}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("create session: %v", err)
	}
	got, err := s.GetSession(ctx, "tok")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.UserID != 7 || got.Revoked {
		t.Fatalf("unexpected session %+v", got)
	}
	if err := s.RevokeSession(ctx, "tok"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	got, _ = s.GetSession(ctx, "tok")
	if !got.Revoked {
		t.Fatalf("expected revoked session")
	}
}

func TestForumAndDeals(t *testing.T) {
	ctx := context.Background()
	s := New()

	topic := core.ForumTopic{OwnerID: 1, Title: "Cheap textbooks?", Body: "Where do you buy?"}
	if err := s.CreateTopic(ctx, &topic); err != nil {
		t.Fatalf("create topic: %v", err)
	}
	reply := core.ForumReply{TopicID: topic.ID, OwnerID: 2, Body: "Campus swap board"}
	if err := s.CreateReply(ctx, &reply); err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if err := s.CreateReply(ctx, &core.ForumReply{TopicID: 999, OwnerID: 2, Body: "orphan"}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("reply to missing topic: expected ErrNotFound, got %v", err)
	}
	replies, err := s.ListRepliesByTopic(ctx, topic.ID)
	if err != nil || len(replies) != 1 {
		t.Fatalf("list replies: %v (%d)", err, len(replies))
	}

	price, _ := decimal.NewFromString("4.99")
	deal := core.Deal{OwnerID: 1, Title: "Pizza night", Price: price}
	if err := s.CreateDeal(ctx, &deal); err != nil {
		t.Fatalf("create deal: %v", err)
	}
	deals, err := s.ListDeals(ctx)
	if err != nil || len(deals) != 1 {
		t.Fatalf("list deals: %v (%d)", err, len(deals))
	}
	if err := s.DeleteDeal(ctx, 1, deal.ID); err != nil {
		t.Fatalf("delete deal: %v", err)
	}
}
