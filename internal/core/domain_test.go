package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad amount %q: %v", s, err)
	}
	return d
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		OwnerID:     1,
		CategoryID:  2,
		Amount:      amount(t, "12.34"),
		Date:        date(2025, 1, 1),
		Description: "lunch",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{OwnerID: 0, CategoryID: 2, Amount: amount(t, "1"), Date: date(2025, 1, 1), Description: "a"},
		{OwnerID: 1, CategoryID: 0, Amount: amount(t, "1"), Date: date(2025, 1, 1), Description: "a"},
		{OwnerID: 1, CategoryID: 2, Amount: amount(t, "-1"), Date: date(2025, 1, 1), Description: "a"},
		{OwnerID: 1, CategoryID: 2, Amount: amount(t, "1"), Description: "a"}, // zero date
		{OwnerID: 1, CategoryID: 2, Amount: amount(t, "1"), Date: date(2025, 1, 1), Description: "  "},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{OwnerID: 1, CategoryID: 2, Limit: amount(t, "100"), Period: PeriodMonthly}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Budget{
		{OwnerID: 0, CategoryID: 2, Limit: amount(t, "100"), Period: PeriodMonthly},
		{OwnerID: 1, CategoryID: 0, Limit: amount(t, "100"), Period: PeriodMonthly},
		{OwnerID: 1, CategoryID: 2, Limit: amount(t, "-1"), Period: PeriodMonthly},
		{OwnerID: 1, CategoryID: 2, Limit: amount(t, "100"), Period: "daily"},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Food", Type: CategoryVariable}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{Name: "", Type: CategoryFixed}).Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := (Category{Name: "Food", Type: "luxury"}).Validate(); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestAlertValidate(t *testing.T) {
	good := Alert{OwnerID: 1, Title: "Budget Warning: Food", Severity: SeverityWarning}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Alert{OwnerID: 1, Title: "x", Severity: "fatal"}).Validate(); err == nil {
		t.Fatalf("expected error for unknown severity")
	}
	if err := (Alert{OwnerID: 1, Title: "", Severity: SeverityError}).Validate(); err == nil {
		t.Fatalf("expected error for empty title")
	}
}

func TestSameMonth(t *testing.T) {
	now := date(2025, 2, 15)
	cases := []struct {
		in   time.Time
		want bool
	}{
		{date(2025, 2, 1), true},
		{date(2025, 2, 28), true},
		{date(2025, 1, 31), false},
		{date(2024, 2, 15), false},
	}
	for i, tc := range cases {
		if got := SameMonth(tc.in, now); got != tc.want {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, got)
		}
	}
}
