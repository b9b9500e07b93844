package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is a point-in-time snapshot of a user's finances. It is
// recomputed from the full transaction and budget lists on every call;
// there is no caching layer to keep consistent.
type Summary struct {
	// Balance is the signed sum over all transactions, all time:
	// income added, expenses subtracted.
	Balance decimal.Decimal
	// MonthlyIncome and MonthlyExpenses cover the current calendar
	// month only.
	MonthlyIncome   decimal.Decimal
	MonthlyExpenses decimal.Decimal
	// NextIncomeDate forecasts the next income as the most recent
	// income transaction's date plus one calendar month. Nil when the
	// user has no income history.
	NextIncomeDate   *time.Time
	NextIncomeAmount decimal.Decimal
	// BudgetDifference is ((monthly expenses / total budgeted) - 1) * 100.
	// Positive means over budget, negative under. Zero when nothing is
	// budgeted.
	BudgetDifference float64
}

var oneHundred = decimal.NewFromInt(100)

// Summarize computes the financial summary for one user from their full
// transaction and budget lists. The current month is taken from now.
func Summarize(txns []Transaction, budgets []Budget, now time.Time) Summary {
	s := Summary{
		Balance:          decimal.Zero,
		MonthlyIncome:    decimal.Zero,
		MonthlyExpenses:  decimal.Zero,
		NextIncomeAmount: decimal.Zero,
	}

	var lastIncome *Transaction
	for i := range txns {
		t := txns[i]
		if t.Income {
			s.Balance = s.Balance.Add(t.Amount)
			if lastIncome == nil || t.Date.After(lastIncome.Date) {
				lastIncome = &txns[i]
			}
		} else {
			s.Balance = s.Balance.Sub(t.Amount)
		}

		if !SameMonth(t.Date, now) {
			continue
		}
		if t.Income {
			s.MonthlyIncome = s.MonthlyIncome.Add(t.Amount)
		} else {
			s.MonthlyExpenses = s.MonthlyExpenses.Add(t.Amount)
		}
	}

	if lastIncome != nil {
		// AddDate normalizes overflow (Jan 31 + 1 month -> Mar 2/3),
		// matching the host library's month-add semantics.
		next := lastIncome.Date.AddDate(0, 1, 0)
		s.NextIncomeDate = &next
		s.NextIncomeAmount = lastIncome.Amount
	}

	totalBudgeted := decimal.Zero
	for _, b := range budgets {
		totalBudgeted = totalBudgeted.Add(b.Limit)
	}
	if totalBudgeted.IsPositive() {
		diff := s.MonthlyExpenses.Div(totalBudgeted).Sub(decimal.NewFromInt(1)).Mul(oneHundred)
		s.BudgetDifference = diff.InexactFloat64()
	}

	return s
}
