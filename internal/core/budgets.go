package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetStatus is a budget joined with its computed spend for the current
// calendar month, for display.
type BudgetStatus struct {
	Budget
	// Category is nil when the referenced category no longer exists;
	// the numeric fields are unaffected.
	Category   *Category
	Spent      decimal.Decimal
	Percentage float64
}

// ProjectBudgets attaches spent and percentage to each budget. Spent sums
// the user's expense transactions in the budget's category for the current
// month; percentage is spent/limit*100, zero when the limit is not
// positive.
func ProjectBudgets(budgets []Budget, txns []Transaction, categories []Category, now time.Time) []BudgetStatus {
	byID := make(map[int64]*Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}

	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		st := BudgetStatus{
			Budget:   b,
			Category: byID[b.CategoryID],
			Spent:    CategorySpent(txns, b.CategoryID, now),
		}
		if b.Limit.IsPositive() {
			st.Percentage = st.Spent.Div(b.Limit).Mul(oneHundred).InexactFloat64()
		}
		out = append(out, st)
	}
	return out
}

// CategorySpent sums expense transactions in one category for the calendar
// month of now.
func CategorySpent(txns []Transaction, categoryID int64, now time.Time) decimal.Decimal {
	spent := decimal.Zero
	for _, t := range txns {
		if t.Income || t.CategoryID != categoryID {
			continue
		}
		if !SameMonth(t.Date, now) {
			continue
		}
		spent = spent.Add(t.Amount)
	}
	return spent
}
