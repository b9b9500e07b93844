package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.repo.ListUsers(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.repo.ListSettings(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	out := make(map[string]string, len(settings))
	for _, setting := range settings {
		out[setting.Key] = setting.Value
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req) == 0 {
		respondError(w, http.StatusBadRequest, "no settings provided")
		return
	}

	for key, value := range req {
		key = sanitizeInput(key)
		if key == "" {
			respondError(w, http.StatusBadRequest, "empty setting key")
			return
		}
		if err := s.repo.SetSetting(r.Context(), key, value); err != nil {
			respondStorageError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type backupUser struct {
	User         userResponse          `json:"user"`
	Transactions []transactionResponse `json:"transactions"`
	Budgets      []budgetBackup        `json:"budgets"`
}

type budgetBackup struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Limit      string `json:"limit"`
	Period     string `json:"period"`
}

type backupResponse struct {
	GeneratedAt string             `json:"generated_at"`
	Categories  []categoryResponse `json:"categories"`
	Settings    map[string]string  `json:"settings"`
	Users       []backupUser       `json:"users"`
}

// handleBackup streams a JSON dump of all user data. Password hashes
// and sessions are deliberately excluded.
func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	settings, err := s.repo.ListSettings(ctx)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	dump := backupResponse{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Categories:  make([]categoryResponse, 0, len(categories)),
		Settings:    make(map[string]string, len(settings)),
		Users:       make([]backupUser, 0, len(users)),
	}
	for _, c := range categories {
		dump.Categories = append(dump.Categories, toCategoryResponse(c))
	}
	for _, setting := range settings {
		dump.Settings[setting.Key] = setting.Value
	}

	for _, u := range users {
		txns, err := s.repo.ListTransactionsByOwner(ctx, u.ID)
		if err != nil {
			respondStorageError(w, err)
			return
		}
		budgets, err := s.repo.ListBudgetsByOwner(ctx, u.ID)
		if err != nil {
			respondStorageError(w, err)
			return
		}

		entry := backupUser{
			User:         toUserResponse(u),
			Transactions: make([]transactionResponse, 0, len(txns)),
			Budgets:      make([]budgetBackup, 0, len(budgets)),
		}
		for _, t := range txns {
			entry.Transactions = append(entry.Transactions, toTransactionResponse(t))
		}
		for _, b := range budgets {
			entry.Budgets = append(entry.Budgets, budgetBackup{
				ID:         b.ID,
				CategoryID: b.CategoryID,
				Limit:      core.FormatAmount(b.Limit),
				Period:     string(b.Period),
			})
		}
		dump.Users = append(dump.Users, entry)
	}

	admin, _ := userFromContext(r)
	log.FromContext(ctx).InfoContext(ctx, "backup generated",
		log.FieldOwnerID, admin.ID,
		"users", len(dump.Users))

	w.Header().Set("Content-Disposition", `attachment; filename="fintrack-backup.json"`)
	respondJSON(w, http.StatusOK, dump)
}
