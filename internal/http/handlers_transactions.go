package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
)

const dateLayout = "2006-01-02"

type transactionRequest struct {
	CategoryID  int64  `json:"category_id"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Income      bool   `json:"income"`
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"category_id"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Income      bool   `json:"income"`
	CreatedAt   string `json:"created_at"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		CategoryID:  t.CategoryID,
		Amount:      core.FormatAmount(t.Amount),
		Date:        t.Date.Format(dateLayout),
		Description: t.Description,
		Income:      t.Income,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

// parseTransaction converts a request body into a domain transaction,
// rejecting bad numeric input before it reaches the engine.
func parseTransaction(req transactionRequest, ownerID int64) (core.Transaction, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return core.Transaction{}, core.ErrInvalidDate
	}
	txn := core.Transaction{
		OwnerID:     ownerID,
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Date:        date,
		Description: sanitizeInput(req.Description),
		Income:      req.Income,
	}
	return txn, txn.Validate()
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)
	txns, err := s.repo.ListTransactionsByOwner(r.Context(), user.ID)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	txn, err := parseTransaction(req, user.ID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.txns.Create(r.Context(), &txn); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "transaction create failed",
			log.FieldError, err,
			log.FieldOwnerID, user.ID)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusCreated, toTransactionResponse(txn))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	txn, err := parseTransaction(req, user.ID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	txn.ID = id

	if err := s.txns.Update(r.Context(), txn); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(txn))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.txns.Delete(r.Context(), user.ID, id); err != nil {
		respondStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	txns, err := s.repo.ListTransactionsByOwner(r.Context(), user.ID)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	categories, err := s.listCategoriesCached(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := export.WriteTransactions(w, txns, categories); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "csv export failed",
			log.FieldError, err,
			log.FieldOwnerID, user.ID)
	}
}

func (s *Server) handleImportTransactions(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	categories, err := s.listCategoriesCached(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}

	txns, err := export.ReadTransactions(http.MaxBytesReader(w, r.Body, 1<<20), user.ID, categories)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Each row goes through the service so budget alerts still fire.
	created := 0
	for i := range txns {
		if err := s.txns.Create(r.Context(), &txns[i]); err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "csv import aborted",
				log.FieldError, err,
				log.FieldOwnerID, user.ID,
				"imported", created)
			respondError(w, http.StatusInternalServerError, "import failed")
			return
		}
		created++
	}
	respondJSON(w, http.StatusCreated, map[string]int{"imported": created})
}
