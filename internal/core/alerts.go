package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ninety = decimal.NewFromInt(90)

// AlertDraft is an alert decided by the evaluator but not yet persisted.
type AlertDraft struct {
	Title    string
	Message  string
	Severity AlertSeverity
}

// EvaluateBudgetAlert decides whether a just-persisted transaction pushes
// its category's budget over a threshold for the current month.
//
// txns is the user's persisted transaction list and must already include
// txn; the evaluator does not add the new amount on top of the sum.
// Thresholds: above 100% emits an error alert, above 90% up to and
// including 100% a warning, otherwise nothing. Each qualifying transaction
// re-evaluates independently; there is no deduplication against existing
// unread alerts.
func EvaluateBudgetAlert(txn Transaction, budgets []Budget, txns []Transaction, categories []Category, now time.Time) (AlertDraft, bool) {
	var budget *Budget
	for i := range budgets {
		if budgets[i].CategoryID == txn.CategoryID {
			budget = &budgets[i]
			break
		}
	}
	if budget == nil {
		return AlertDraft{}, false
	}
	if !budget.Limit.IsPositive() {
		// Percentage is defined as 0 for a non-positive limit, so no
		// threshold can be crossed.
		return AlertDraft{}, false
	}

	spent := CategorySpent(txns, txn.CategoryID, now)
	percentage := spent.Div(budget.Limit).Mul(oneHundred)

	label := "this category"
	for _, c := range categories {
		if c.ID == txn.CategoryID {
			label = c.Name
			break
		}
	}

	switch {
	case percentage.GreaterThan(oneHundred):
		overage := spent.Sub(budget.Limit)
		over := percentage.Sub(oneHundred)
		return AlertDraft{
			Title: "Budget Alert: " + label,
			Message: fmt.Sprintf("You have exceeded your budget for %s by $%s (%s%% over).",
				label, overage.StringFixed(2), over.Round(0).String()),
			Severity: SeverityError,
		}, true
	case percentage.GreaterThan(ninety):
		return AlertDraft{
			Title: "Budget Warning: " + label,
			Message: fmt.Sprintf("You have used %s%% of your budget for %s.",
				percentage.Round(0).String(), label),
			Severity: SeverityWarning,
		}, true
	}
	return AlertDraft{}, false
}
