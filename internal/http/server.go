// Package http exposes the JSON API: auth, transactions, budgets,
// summaries, alerts, categories, forum, deals, and admin tooling.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// SessionCookie is the name of the auth cookie set on login.
const SessionCookie = "fintrack_session"

type Server struct {
	http.Server

	repo     storage.Repository
	sessions *auth.Sessions
	txns     *services.TransactionService
	logger   *log.Logger

	rateLimiter *rateLimiter

	// categoryCache fronts the shared category list; invalidated on
	// category creation.
	categoryCache    *cache.LRU[[]core.Category]
	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

func NewServer(addr string, repo storage.Repository, sessions *auth.Sessions, txns *services.TransactionService, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		repo:             repo,
		sessions:         sessions,
		txns:             txns,
		logger:           logger.WithComponent(log.ComponentHTTP),
		rateLimiter:      newRateLimiter(),
		categoryCache:    cache.NewLRU[[]core.Category](1, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/register", s.wrap(s.handleRegister))
	mux.HandleFunc("POST /api/login", s.wrap(s.handleLogin))
	mux.HandleFunc("POST /api/logout", s.wrap(s.handleLogout))

	mux.HandleFunc("GET /api/summary", s.wrapAuth(s.handleSummary))

	mux.HandleFunc("GET /api/transactions", s.wrapAuth(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.wrapAuth(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.wrapAuth(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.wrapAuth(s.handleDeleteTransaction))
	mux.HandleFunc("GET /api/transactions/export", s.wrapAuth(s.handleExportTransactions))
	mux.HandleFunc("POST /api/transactions/import", s.wrapAuth(s.handleImportTransactions))

	mux.HandleFunc("GET /api/budgets", s.wrapAuth(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.wrapAuth(s.handleCreateBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.wrapAuth(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.wrapAuth(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/categories", s.wrapAuth(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.wrapAdmin(s.handleCreateCategory))

	mux.HandleFunc("GET /api/alerts", s.wrapAuth(s.handleListAlerts))
	mux.HandleFunc("POST /api/alerts/{id}/read", s.wrapAuth(s.handleMarkAlertRead))

	mux.HandleFunc("GET /api/forum/topics", s.wrapAuth(s.handleListTopics))
	mux.HandleFunc("POST /api/forum/topics", s.wrapAuth(s.handleCreateTopic))
	mux.HandleFunc("GET /api/forum/topics/{id}/replies", s.wrapAuth(s.handleListReplies))
	mux.HandleFunc("POST /api/forum/topics/{id}/replies", s.wrapAuth(s.handleCreateReply))

	mux.HandleFunc("GET /api/deals", s.wrapAuth(s.handleListDeals))
	mux.HandleFunc("POST /api/deals", s.wrapAuth(s.handleCreateDeal))
	mux.HandleFunc("DELETE /api/deals/{id}", s.wrapAuth(s.handleDeleteDeal))

	mux.HandleFunc("GET /api/admin/users", s.wrapAdmin(s.handleListUsers))
	mux.HandleFunc("GET /api/admin/settings", s.wrapAdmin(s.handleGetSettings))
	mux.HandleFunc("PUT /api/admin/settings", s.wrapAdmin(s.handlePutSettings))
	mux.HandleFunc("GET /api/admin/backup", s.wrapAdmin(s.handleBackup))

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.categoryCache.CleanExpired(); cleaned > 0 {
				s.logger.Debug("cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the background goroutines, then drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// wrap adds security headers, rate limiting on mutating methods, and
// request logging.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)

		requestID := uuid.NewString()
		logger := s.logger.With(
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
		)
		ctx := log.IntoContext(r.Context(), logger)
		r = r.WithContext(ctx)
		logger.InfoContext(ctx, "request started",
			log.FieldClientIP, ip,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		if isMutating(r.Method) && !s.rateLimiter.allow(ip) {
			logger.WarnContext(ctx, "rate limit exceeded", log.FieldClientIP, ip)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.InfoContext(ctx, "request completed",
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, ip)
	}
}

// wrapAuth additionally resolves the session cookie to a user.
func (s *Server) wrapAuth(next http.HandlerFunc) http.HandlerFunc {
	return s.wrap(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authenticate(w, r)
		if !ok {
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyUser, user)
		next(w, r.WithContext(ctx))
	})
}

// wrapAdmin further requires the admin flag.
func (s *Server) wrapAdmin(next http.HandlerFunc) http.HandlerFunc {
	return s.wrap(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authenticate(w, r)
		if !ok {
			return
		}
		if !user.Admin {
			respondError(w, http.StatusForbidden, "admin access required")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyUser, user)
		next(w, r.WithContext(ctx))
	})
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (core.User, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return core.User{}, false
	}
	user, err := s.sessions.Resolve(r.Context(), cookie.Value)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid or expired session")
		return core.User{}, false
	}
	return user, true
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Ready once the database answers.
	if _, err := s.repo.ListCategories(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "storage not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
