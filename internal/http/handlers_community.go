package http

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type topicRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type topicResponse struct {
	ID        int64  `json:"id"`
	OwnerID   int64  `json:"owner_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

func toTopicResponse(t core.ForumTopic) topicResponse {
	return topicResponse{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		Title:     t.Title,
		Body:      t.Body,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.repo.ListTopics(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	out := make([]topicResponse, 0, len(topics))
	for _, t := range topics {
		out = append(out, toTopicResponse(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	var req topicRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	topic := core.ForumTopic{
		OwnerID: user.ID,
		Title:   sanitizeInput(req.Title),
		Body:    sanitizeInput(req.Body),
	}
	if err := topic.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.CreateTopic(r.Context(), &topic); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTopicResponse(topic))
}

type replyRequest struct {
	Body string `json:"body"`
}

type replyResponse struct {
	ID        int64  `json:"id"`
	TopicID   int64  `json:"topic_id"`
	OwnerID   int64  `json:"owner_id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleListReplies(w http.ResponseWriter, r *http.Request) {
	topicID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.repo.GetTopic(r.Context(), topicID); err != nil {
		respondStorageError(w, err)
		return
	}
	replies, err := s.repo.ListRepliesByTopic(r.Context(), topicID)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	out := make([]replyResponse, 0, len(replies))
	for _, reply := range replies {
		out = append(out, replyResponse{
			ID:        reply.ID,
			TopicID:   reply.TopicID,
			OwnerID:   reply.OwnerID,
			Body:      reply.Body,
			CreatedAt: reply.CreatedAt.Format(time.RFC3339),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateReply(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	topicID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.repo.GetTopic(r.Context(), topicID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "topic not found")
			return
		}
		respondStorageError(w, err)
		return
	}

	var req replyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reply := core.ForumReply{
		TopicID: topicID,
		OwnerID: user.ID,
		Body:    sanitizeInput(req.Body),
	}
	if err := reply.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.CreateReply(r.Context(), &reply); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, replyResponse{
		ID:        reply.ID,
		TopicID:   reply.TopicID,
		OwnerID:   reply.OwnerID,
		Body:      reply.Body,
		CreatedAt: reply.CreatedAt.Format(time.RFC3339),
	})
}

type dealRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Price       string `json:"price"`
}

type dealResponse struct {
	ID          int64  `json:"id"`
	OwnerID     int64  `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Price       string `json:"price"`
	CreatedAt   string `json:"created_at"`
}

func toDealResponse(d core.Deal) dealResponse {
	return dealResponse{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		Description: d.Description,
		URL:         d.URL,
		Price:       core.FormatAmount(d.Price),
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	deals, err := s.repo.ListDeals(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	out := make([]dealResponse, 0, len(deals))
	for _, d := range deals {
		out = append(out, toDealResponse(d))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	var req dealRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price, err := core.ParseAmount(req.Price)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.URL != "" {
		if _, err := url.ParseRequestURI(req.URL); err != nil {
			respondError(w, http.StatusBadRequest, "invalid deal URL")
			return
		}
	}

	deal := core.Deal{
		OwnerID:     user.ID,
		Title:       sanitizeInput(req.Title),
		Description: sanitizeInput(req.Description),
		URL:         req.URL,
		Price:       price,
	}
	if err := deal.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.repo.CreateDeal(r.Context(), &deal); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toDealResponse(deal))
}

// handleDeleteDeal lets the poster remove their own deal; admins can
// remove any.
func (s *Server) handleDeleteDeal(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r)

	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ownerID := user.ID
	if user.Admin {
		ownerID = 0 // owner scope disabled for admins
	}
	if err := s.repo.DeleteDeal(r.Context(), ownerID, id); err != nil {
		respondStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
