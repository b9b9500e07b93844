package http

import (
	"errors"
	"net/http"
	"net/mail"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const minPasswordLength = 8

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Admin: u.Admin}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = sanitizeInput(req.Name)
	req.Email = sanitizeInput(req.Email)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if _, err := s.repo.GetUserByEmail(r.Context(), req.Email); err == nil {
		respondError(w, http.StatusConflict, "email already registered")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		respondStorageError(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "password hashing failed", log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// The first account becomes the administrator.
	existing, err := s.repo.ListUsers(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}

	user := core.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Admin:        len(existing) == 0,
	}
	if err := s.repo.CreateUser(r.Context(), &user); err != nil {
		respondStorageError(w, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "user registered",
		log.FieldUserEmail, user.Email,
		log.FieldOwnerID, user.ID)
	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.repo.GetUserByEmail(r.Context(), sanitizeInput(req.Email))
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.sessions.Issue(r.Context(), user.ID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "session issue failed", log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if err := s.sessions.Revoke(r.Context(), cookie.Value); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "session revoke failed", log.FieldError, err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	w.WriteHeader(http.StatusNoContent)
}
