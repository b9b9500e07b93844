package core

import (
	"testing"
)

func TestProjectBudgets(t *testing.T) {
	now := date(2025, 5, 20)
	cats := []Category{
		{ID: 1, Name: "Food", Type: CategoryVariable, Color: "#22c55e"},
		{ID: 2, Name: "Housing", Type: CategoryFixed, Color: "#3b82f6"},
	}
	txns := []Transaction{
		expense(t, 1, "40", date(2025, 5, 1)),
		expense(t, 1, "35", date(2025, 5, 14)),
		expense(t, 1, "99", date(2025, 4, 30)), // previous month, excluded
		income(t, 1, "500", date(2025, 5, 2)),  // income, excluded from spend
		expense(t, 2, "600", date(2025, 5, 3)),
	}
	budgets := []Budget{
		{ID: 1, OwnerID: 1, CategoryID: 1, Limit: amount(t, "100"), Period: PeriodMonthly},
		{ID: 2, OwnerID: 1, CategoryID: 2, Limit: amount(t, "800"), Period: PeriodMonthly},
	}

	out := ProjectBudgets(budgets, txns, cats, now)
	if len(out) != 2 {
		t.Fatalf("expected 2 projections, got %d", len(out))
	}

	food := out[0]
	if got := food.Spent.String(); got != "75" {
		t.Fatalf("food spent: expected 75, got %s", got)
	}
	if food.Percentage != 75 {
		t.Fatalf("food percentage: expected 75, got %v", food.Percentage)
	}
	if food.Category == nil || food.Category.Name != "Food" {
		t.Fatalf("food category not joined: %+v", food.Category)
	}

	housing := out[1]
	if got := housing.Spent.String(); got != "600" {
		t.Fatalf("housing spent: expected 600, got %s", got)
	}
	if housing.Percentage != 75 {
		t.Fatalf("housing percentage: expected 75, got %v", housing.Percentage)
	}
}

func TestProjectBudgetsZeroLimit(t *testing.T) {
	now := date(2025, 5, 20)
	txns := []Transaction{expense(t, 1, "75", date(2025, 5, 1))}
	budgets := []Budget{{ID: 1, OwnerID: 1, CategoryID: 1, Limit: amount(t, "0"), Period: PeriodMonthly}}

	out := ProjectBudgets(budgets, txns, nil, now)
	if out[0].Percentage != 0 {
		t.Fatalf("zero limit must yield 0 percentage, got %v", out[0].Percentage)
	}
	if got := out[0].Spent.String(); got != "75" {
		t.Fatalf("spent: expected 75, got %s", got)
	}
}

// A budget whose category was deleted still projects with correct numbers
// and a nil category.
func TestProjectBudgetsMissingCategory(t *testing.T) {
	now := date(2025, 5, 20)
	cats := []Category{{ID: 1, Name: "Food"}}
	txns := []Transaction{expense(t, 42, "30", date(2025, 5, 1))}
	budgets := []Budget{{ID: 1, OwnerID: 1, CategoryID: 42, Limit: amount(t, "60"), Period: PeriodMonthly}}

	out := ProjectBudgets(budgets, txns, cats, now)
	if out[0].Category != nil {
		t.Fatalf("expected nil category, got %+v", out[0].Category)
	}
	if got := out[0].Spent.String(); got != "30" {
		t.Fatalf("spent: expected 30, got %s", got)
	}
	if out[0].Percentage != 50 {
		t.Fatalf("percentage: expected 50, got %v", out[0].Percentage)
	}
}
