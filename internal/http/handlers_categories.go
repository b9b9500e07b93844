package http

import (
	"context"
	"net/http"

	"fintrack/internal/core"
)

const categoryCacheKey = "categories"

type categoryResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Type: string(c.Type), Color: c.Color}
}

// listCategoriesCached serves the shared category list through the LRU
// cache; categories change rarely.
func (s *Server) listCategoriesCached(ctx context.Context) ([]core.Category, error) {
	if cached, ok := s.categoryCache.Get(categoryCacheKey); ok {
		return cached, nil
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.categoryCache.Set(categoryCacheKey, categories)
	return categories, nil
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.listCategoriesCached(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	respondJSON(w, http.StatusOK, out)
}

type categoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := core.Category{
		Name:  sanitizeInput(req.Name),
		Type:  core.CategoryType(req.Type),
		Color: sanitizeInput(req.Color),
	}
	if err := category.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.repo.CreateCategory(r.Context(), &category); err != nil {
		respondStorageError(w, err)
		return
	}
	s.categoryCache.Delete(categoryCacheKey)
	respondJSON(w, http.StatusCreated, toCategoryResponse(category))
}
