package http

import (
	"net/http"

	"fintrack/internal/core"
)

type budgetRequest struct {
	CategoryID int64  `json:"category_id"`
	Limit      string `json:"limit"`
	Period     string `json:"period"`
}

type budgetStatusResponse struct {
	ID         int64             `json:"id"`
	CategoryID int64             `json:"category_id"`
	Category   *categoryResponse `json:"category"`
	Limit      string            `json:"limit"`
	Period     string            `json:"period"`
	Spent      string            `json:"spent"`
	Percentage float64           `json:"percentage"`
}

func parseBudget(req budgetRequest, ownerID int64) (core.Budget, error) {
	limit, err := core.ParseAmount(req.Limit)
	if err != nil {
		return core.Budget{}, err
	}
	b := core.Budget{
		OwnerID:    ownerID,
		CategoryID: req.CategoryID,
		Limit:      limit,
		Period:     core.BudgetPeriod(req.Period),
	}
	return b, b.Validate()
}

// handleListBudgets returns budgets with current-month spending applied.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	statuses, err := s.txns.BudgetStatuses(r.Context(), user.ID)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	out := make([]budgetStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		resp := budgetStatusResponse{
			ID:         st.ID,
			CategoryID: st.CategoryID,
			Limit:      core.FormatAmount(st.Limit),
			Period:     string(st.Period),
			Spent:      core.FormatAmount(st.Spent),
			Percentage: st.Percentage,
		}
		if st.Category != nil {
			c := toCategoryResponse(*st.Category)
			resp.Category = &c
		}
		out = append(out, resp)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	budget, err := parseBudget(req, user.ID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.repo.CreateBudget(r.Context(), &budget); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": budget.ID})
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	budget, err := parseBudget(req, user.ID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	budget.ID = id

	if err := s.repo.UpdateBudget(r.Context(), budget); err != nil {
		respondStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.DeleteBudget(r.Context(), user.ID, id); err != nil {
		respondStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
