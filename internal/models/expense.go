package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a row of expenses.
type Expense struct {
	ExpenseID   int64           `db:"expense_id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Currency    string          `db:"currency"`
	Category    string          `db:"category"`
	PayerID     int64           `db:"payer_id"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	PaidAt      time.Time       `db:"paid_at"`
	AuditFields
}

// ExpenseParticipant is a row of expense_participants.
type ExpenseParticipant struct {
	ExpenseID    int64           `db:"expense_id"`
	UserID       int64           `db:"user_id"`
	OwedAmount   decimal.Decimal `db:"owed_amount"`
	Provenance   string          `db:"provenance"`
	ProvenanceID sql.NullInt64   `db:"provenance_id"` // group id for GROUP rows
	Active       bool            `db:"active"`
	Paid         bool            `db:"paid"`
	PaidAt       sql.NullTime    `db:"paid_at"`
}
