package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

// SQLiteRepository implements Repository over a modernc.org/sqlite
// database. Identity comes from SQLite's autoincrement rowids.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func parseAmountColumn(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse stored amount %q: %w", s, err)
	}
	return d, nil
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, u *core.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, admin, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, u.Admin, u.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	slog.InfoContext(ctx, "User created", "id", u.ID, "email", u.Email)
	return nil
}

func scanUser(row rowScanner) (core.User, error) {
	var u core.User
	var created string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Admin, &created); err != nil {
		return core.User{}, err
	}
	u.CreatedAt, _ = time.Parse(timeLayout, created)
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, admin, created_at FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, admin, created_at FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, password_hash, admin, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// --- sessions ---

func (r *SQLiteRepository) CreateSession(ctx context.Context, s Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, revoked, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.Token, s.UserID, s.ExpiresAt.Format(timeLayout), s.Revoked, s.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetSession(ctx context.Context, token string) (Session, error) {
	var s Session
	var expires, created string
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, revoked, created_at FROM sessions WHERE token = ?`, token).
		Scan(&s.Token, &s.UserID, &expires, &s.Revoked, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	s.ExpiresAt, _ = time.Parse(timeLayout, expires)
	s.CreatedAt, _ = time.Parse(timeLayout, created)
	return s, nil
}

func (r *SQLiteRepository) RevokeSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET revoked = 1 WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// --- categories ---

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, type, color FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c *core.Category) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, type, color) VALUES (?, ?, ?)`, c.Name, c.Type, c.Color)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("category id: %w", err)
	}
	return nil
}

// --- transactions ---

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t *core.Transaction) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (owner_id, category_id, amount, date, description, income, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.OwnerID, t.CategoryID, t.Amount.String(), t.Date.Format(dateLayout),
		t.Description, t.Income, t.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("transaction id: %w", err)
	}
	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"owner_id", t.OwnerID,
		"category_id", t.CategoryID,
		"amount", t.Amount.String(),
		"income", t.Income)
	return nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var amt, date, created string
	if err := row.Scan(&t.ID, &t.OwnerID, &t.CategoryID, &amt, &date, &t.Description, &t.Income, &created); err != nil {
		return core.Transaction{}, err
	}
	var err error
	if t.Amount, err = parseAmountColumn(amt); err != nil {
		return core.Transaction{}, err
	}
	if t.Date, err = time.Parse(dateLayout, date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	t.CreatedAt, _ = time.Parse(timeLayout, created)
	return t, nil
}

const transactionColumns = `id, owner_id, category_id, amount, date, description, income, created_at`

func (r *SQLiteRepository) GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET category_id = ?, amount = ?, date = ?, description = ?, income = ?
		 WHERE id = ? AND owner_id = ?`,
		t.CategoryID, t.Amount.String(), t.Date.Format(dateLayout), t.Description, t.Income,
		t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) ListTransactionsByOwner(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE owner_id = ? ORDER BY date DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// --- budgets ---

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b *core.Budget) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (owner_id, category_id, limit_amount, period) VALUES (?, ?, ?, ?)`,
		b.OwnerID, b.CategoryID, b.Limit.String(), b.Period)
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("budget id: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET category_id = ?, limit_amount = ?, period = ? WHERE id = ? AND owner_id = ?`,
		b.CategoryID, b.Limit.String(), b.Period, b.ID, b.OwnerID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) ListBudgetsByOwner(ctx context.Context, ownerID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, category_id, limit_amount, period FROM budgets WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		var limit string
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.CategoryID, &limit, &b.Period); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if b.Limit, err = parseAmountColumn(limit); err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// --- alerts ---

func (r *SQLiteRepository) CreateAlert(ctx context.Context, a *core.Alert) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO alerts (owner_id, title, message, severity, read, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.OwnerID, a.Title, a.Message, a.Severity, a.Read, a.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("alert id: %w", err)
	}
	slog.InfoContext(ctx, "Alert created",
		"id", a.ID,
		"owner_id", a.OwnerID,
		"severity", a.Severity,
		"title", a.Title)
	return nil
}

func (r *SQLiteRepository) ListAlertsByOwner(ctx context.Context, ownerID int64) ([]core.Alert, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, message, severity, read, created_at
		 FROM alerts WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []core.Alert
	for rows.Next() {
		var a core.Alert
		var created string
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Title, &a.Message, &a.Severity, &a.Read, &created); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.CreatedAt, _ = time.Parse(timeLayout, created)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *SQLiteRepository) MarkAlertRead(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET read = 1 WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	return requireAffected(res)
}

// --- forum ---

func (r *SQLiteRepository) CreateTopic(ctx context.Context, t *core.ForumTopic) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO forum_topics (owner_id, title, body, created_at) VALUES (?, ?, ?, ?)`,
		t.OwnerID, t.Title, t.Body, t.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create topic: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("topic id: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetTopic(ctx context.Context, id int64) (core.ForumTopic, error) {
	var t core.ForumTopic
	var created string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, body, created_at FROM forum_topics WHERE id = ?`, id).
		Scan(&t.ID, &t.OwnerID, &t.Title, &t.Body, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ForumTopic{}, ErrNotFound
	}
	if err != nil {
		return core.ForumTopic{}, fmt.Errorf("get topic: %w", err)
	}
	t.CreatedAt, _ = time.Parse(timeLayout, created)
	return t, nil
}

func (r *SQLiteRepository) ListTopics(ctx context.Context) ([]core.ForumTopic, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, body, created_at FROM forum_topics ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []core.ForumTopic
	for rows.Next() {
		var t core.ForumTopic
		var created string
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Body, &created); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		t.CreatedAt, _ = time.Parse(timeLayout, created)
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (r *SQLiteRepository) CreateReply(ctx context.Context, reply *core.ForumReply) error {
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO forum_replies (topic_id, owner_id, body, created_at) VALUES (?, ?, ?, ?)`,
		reply.TopicID, reply.OwnerID, reply.Body, reply.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create reply: %w", err)
	}
	reply.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reply id: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListRepliesByTopic(ctx context.Context, topicID int64) ([]core.ForumReply, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, topic_id, owner_id, body, created_at FROM forum_replies WHERE topic_id = ? ORDER BY id`, topicID)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	defer rows.Close()

	var replies []core.ForumReply
	for rows.Next() {
		var rep core.ForumReply
		var created string
		if err := rows.Scan(&rep.ID, &rep.TopicID, &rep.OwnerID, &rep.Body, &created); err != nil {
			return nil, fmt.Errorf("scan reply: %w", err)
		}
		rep.CreatedAt, _ = time.Parse(timeLayout, created)
		replies = append(replies, rep)
	}
	return replies, rows.Err()
}

// --- deals ---

func (r *SQLiteRepository) CreateDeal(ctx context.Context, d *core.Deal) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO deals (owner_id, title, description, url, price, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		d.OwnerID, d.Title, d.Description, d.URL, d.Price.String(), d.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("create deal: %w", err)
	}
	d.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("deal id: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListDeals(ctx context.Context) ([]core.Deal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, description, url, price, created_at FROM deals ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	defer rows.Close()

	var deals []core.Deal
	for rows.Next() {
		var d core.Deal
		var price, created string
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.Title, &d.Description, &d.URL, &price, &created); err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		if d.Price, err = parseAmountColumn(price); err != nil {
			return nil, err
		}
		d.CreatedAt, _ = time.Parse(timeLayout, created)
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

func (r *SQLiteRepository) DeleteDeal(ctx context.Context, ownerID, id int64) error {
	query := `DELETE FROM deals WHERE id = ? AND owner_id = ?`
	args := []any{id, ownerID}
	if ownerID == 0 {
		query = `DELETE FROM deals WHERE id = ?`
		args = []any{id}
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete deal: %w", err)
	}
	return requireAffected(res)
}

// --- settings ---

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM system_settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO system_settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListSettings(ctx context.Context) ([]core.Setting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM system_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []core.Setting
	for rows.Next() {
		var s core.Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// requireAffected maps zero-row updates and deletes to ErrNotFound so
// handlers can distinguish a bad id from a storage failure.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
