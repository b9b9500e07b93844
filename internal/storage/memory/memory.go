// Package memory implements the storage.Repository contract with
// mutex-guarded maps. It backs tests and the development backend; identity
// counters live on the store instance, never in package state.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type Store struct {
	mu sync.Mutex

	users        map[int64]core.User
	sessions     map[string]storage.Session
	categories   map[int64]core.Category
	transactions map[int64]core.Transaction
	budgets      map[int64]core.Budget
	alerts       map[int64]core.Alert
	topics       map[int64]core.ForumTopic
	replies      map[int64]core.ForumReply
	deals        map[int64]core.Deal
	settings     map[string]string

	nextID map[string]int64
}

var _ storage.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		users:        make(map[int64]core.User),
		sessions:     make(map[string]storage.Session),
		categories:   make(map[int64]core.Category),
		transactions: make(map[int64]core.Transaction),
		budgets:      make(map[int64]core.Budget),
		alerts:       make(map[int64]core.Alert),
		topics:       make(map[int64]core.ForumTopic),
		replies:      make(map[int64]core.ForumReply),
		deals:        make(map[int64]core.Deal),
		settings:     make(map[string]string),
		nextID:       make(map[string]int64),
	}
}

// NewSeeded returns a store pre-populated with the default global
// categories, mirroring the SQLite seed migration.
func NewSeeded() *Store {
	s := New()
	defaults := []core.Category{
		{Name: "Housing", Type: core.CategoryFixed, Color: "#3b82f6"},
		{Name: "Tuition", Type: core.CategoryFixed, Color: "#8b5cf6"},
		{Name: "Food", Type: core.CategoryVariable, Color: "#22c55e"},
		{Name: "Transport", Type: core.CategoryVariable, Color: "#f59e0b"},
		{Name: "Entertainment", Type: core.CategoryDiscretionary, Color: "#ec4899"},
		{Name: "Shopping", Type: core.CategoryDiscretionary, Color: "#ef4444"},
		{Name: "Income", Type: core.CategoryIncome, Color: "#14b8a6"},
	}
	for i := range defaults {
		_ = s.CreateCategory(context.Background(), &defaults[i])
	}
	return s
}

func (s *Store) Close() error { return nil }

// next must be called with the mutex held.
func (s *Store) next(entity string) int64 {
	s.nextID[entity]++
	return s.nextID[entity]
}

// --- users ---

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.ID = s.next("user")
	s.users[u.ID] = *u
	return nil
}

func (s *Store) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return core.User{}, storage.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- sessions ---

func (s *Store) CreateSession(_ context.Context, sess storage.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	s.sessions[sess.Token] = sess
	return nil
}

func (s *Store) GetSession(_ context.Context, token string) (storage.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return storage.Session{}, storage.ErrNotFound
	}
	return sess, nil
}

func (s *Store) RevokeSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[token]; ok {
		sess.Revoked = true
		s.sessions[token] = sess
	}
	return nil
}

// --- categories ---

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c *core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.next("category")
	s.categories[c.ID] = *c
	return nil
}

// DeleteCategory removes a category without touching budgets that
// reference it; projections for those budgets report a nil category.
func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

// --- transactions ---

func (s *Store) CreateTransaction(_ context.Context, t *core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.ID = s.next("transaction")
	s.transactions[t.ID] = *t
	return nil
}

func (s *Store) GetTransaction(_ context.Context, ownerID, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return core.Transaction{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.transactions[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return storage.ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) ListTransactionsByOwner(_ context.Context, ownerID int64) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// --- budgets ---

func (s *Store) CreateBudget(_ context.Context, b *core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.next("budget")
	s.budgets[b.ID] = *b
	return nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.budgets[b.ID]
	if !ok || existing.OwnerID != b.OwnerID {
		return storage.ErrNotFound
	}
	s.budgets[b.ID] = b
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func (s *Store) ListBudgetsByOwner(_ context.Context, ownerID int64) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Budget
	for _, b := range s.budgets {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- alerts ---

func (s *Store) CreateAlert(_ context.Context, a *core.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.ID = s.next("alert")
	s.alerts[a.ID] = *a
	return nil
}

func (s *Store) ListAlertsByOwner(_ context.Context, ownerID int64) ([]core.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Alert
	for _, a := range s.alerts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) MarkAlertRead(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok || a.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	a.Read = true
	s.alerts[id] = a
	return nil
}

// --- forum ---

func (s *Store) CreateTopic(_ context.Context, t *core.ForumTopic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.ID = s.next("topic")
	s.topics[t.ID] = *t
	return nil
}

func (s *Store) GetTopic(_ context.Context, id int64) (core.ForumTopic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[id]
	if !ok {
		return core.ForumTopic{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTopics(_ context.Context) ([]core.ForumTopic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ForumTopic, 0, len(s.topics))
	for _, t := range s.topics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) CreateReply(_ context.Context, r *core.ForumReply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.topics[r.TopicID]; !ok {
		return storage.ErrNotFound
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.ID = s.next("reply")
	s.replies[r.ID] = *r
	return nil
}

func (s *Store) ListRepliesByTopic(_ context.Context, topicID int64) ([]core.ForumReply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ForumReply
	for _, r := range s.replies {
		if r.TopicID == topicID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- deals ---

func (s *Store) CreateDeal(_ context.Context, d *core.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	d.ID = s.next("deal")
	s.deals[d.ID] = *d
	return nil
}

func (s *Store) ListDeals(_ context.Context) ([]core.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Deal, 0, len(s.deals))
	for _, d := range s.deals {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) DeleteDeal(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deals[id]
	if !ok || (ownerID != 0 && d.OwnerID != ownerID) {
		return storage.ErrNotFound
	}
	delete(s.deals, id)
	return nil
}

// --- settings ---

func (s *Store) GetSetting(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.settings[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (s *Store) SetSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}

func (s *Store) ListSettings(_ context.Context) ([]core.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Setting, 0, len(s.settings))
	for k, v := range s.settings {
		out = append(out, core.Setting{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
