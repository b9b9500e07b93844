package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

type summaryResponse struct {
	Balance          string  `json:"balance"`
	MonthlyIncome    string  `json:"monthly_income"`
	MonthlyExpenses  string  `json:"monthly_expenses"`
	NextIncomeDate   *string `json:"next_income_date"`
	NextIncomeAmount string  `json:"next_income_amount"`
	BudgetDifference float64 `json:"budget_difference"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	sum, err := s.txns.Summary(r.Context(), user.ID)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	resp := summaryResponse{
		Balance:          sum.Balance.StringFixed(2),
		MonthlyIncome:    core.FormatAmount(sum.MonthlyIncome),
		MonthlyExpenses:  core.FormatAmount(sum.MonthlyExpenses),
		NextIncomeAmount: core.FormatAmount(sum.NextIncomeAmount),
		BudgetDifference: sum.BudgetDifference,
	}
	if sum.NextIncomeDate != nil {
		d := sum.NextIncomeDate.Format(dateLayout)
		resp.NextIncomeDate = &d
	}
	respondJSON(w, http.StatusOK, resp)
}

type alertResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	alerts, err := s.repo.ListAlertsByOwner(r.Context(), user.ID)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertResponse{
			ID:        a.ID,
			Title:     a.Title,
			Message:   a.Message,
			Severity:  string(a.Severity),
			Read:      a.Read,
			CreatedAt: a.CreatedAt.Format(time.RFC3339),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.MarkAlertRead(r.Context(), user.ID, id); err != nil {
		respondStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
