package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodYearly  BudgetPeriod = "yearly"
)

const (
	CategoryFixed         CategoryType = "fixed"
	CategoryVariable      CategoryType = "variable"
	CategoryDiscretionary CategoryType = "discretionary"
	CategoryIncome        CategoryType = "income"
)

const (
	SeverityWarning AlertSeverity = "warning"
	SeverityError   AlertSeverity = "error"
	SeveritySuccess AlertSeverity = "success"
)

type (
	BudgetPeriod  string
	CategoryType  string
	AlertSeverity string

	User struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash string
		Admin        bool
		CreatedAt    time.Time
	}

	// Category is shared across all users, not owner-scoped.
	Category struct {
		ID    int64
		Name  string
		Type  CategoryType
		Color string
	}

	// Transaction carries its direction in the Income flag; Amount is
	// always non-negative.
	Transaction struct {
		ID          int64
		OwnerID     int64
		CategoryID  int64
		Amount      decimal.Decimal
		Date        time.Time
		Description string
		Income      bool
		CreatedAt   time.Time
	}

	Budget struct {
		ID         int64
		OwnerID    int64
		CategoryID int64
		Limit      decimal.Decimal
		Period     BudgetPeriod
	}

	// Alert is append-only: after creation only the Read flag changes.
	Alert struct {
		ID        int64
		OwnerID   int64
		Title     string
		Message   string
		Severity  AlertSeverity
		Read      bool
		CreatedAt time.Time
	}

	ForumTopic struct {
		ID        int64
		OwnerID   int64
		Title     string
		Body      string
		CreatedAt time.Time
	}

	ForumReply struct {
		ID        int64
		TopicID   int64
		OwnerID   int64
		Body      string
		CreatedAt time.Time
	}

	Deal struct {
		ID          int64
		OwnerID     int64
		Title       string
		Description string
		URL         string
		Price       decimal.Decimal
		CreatedAt   time.Time
	}

	Setting struct {
		Key   string
		Value string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidPeriod    = errors.New("invalid budget period")
	ErrInvalidSeverity  = errors.New("invalid alert severity")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyTitle       = errors.New("empty title")
	ErrMissingCategory  = errors.New("missing category reference")
	ErrMissingOwner     = errors.New("missing owner reference")
)

func (p BudgetPeriod) Valid() bool {
	switch p {
	case PeriodMonthly, PeriodWeekly, PeriodYearly:
		return true
	}
	return false
}

func (t CategoryType) Valid() bool {
	switch t {
	case CategoryFixed, CategoryVariable, CategoryDiscretionary, CategoryIncome:
		return true
	}
	return false
}

func (s AlertSeverity) Valid() bool {
	switch s {
	case SeverityWarning, SeverityError, SeveritySuccess:
		return true
	}
	return false
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyTitle
	}
	if !c.Type.Valid() {
		return errors.New("invalid category type")
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.OwnerID <= 0 {
		return ErrMissingOwner
	}
	if t.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (b Budget) Validate() error {
	if b.OwnerID <= 0 {
		return ErrMissingOwner
	}
	if b.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if b.Limit.IsNegative() {
		return ErrInvalidAmount
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	return nil
}

func (a Alert) Validate() error {
	if a.OwnerID <= 0 {
		return ErrMissingOwner
	}
	if len(strings.TrimSpace(a.Title)) == 0 {
		return ErrEmptyTitle
	}
	if !a.Severity.Valid() {
		return ErrInvalidSeverity
	}
	return nil
}

func (t ForumTopic) Validate() error {
	if t.OwnerID <= 0 {
		return ErrMissingOwner
	}
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	return nil
}

func (r ForumReply) Validate() error {
	if r.OwnerID <= 0 {
		return ErrMissingOwner
	}
	if r.TopicID <= 0 {
		return errors.New("missing topic reference")
	}
	if len(strings.TrimSpace(r.Body)) == 0 {
		return errors.New("empty reply body")
	}
	return nil
}

func (d Deal) Validate() error {
	if d.OwnerID <= 0 {
		return ErrMissingOwner
	}
	if len(strings.TrimSpace(d.Title)) == 0 {
		return ErrEmptyTitle
	}
	if d.Price.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// SameMonth reports whether t falls in the same calendar month and year as ref.
func SameMonth(t, ref time.Time) bool {
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}
