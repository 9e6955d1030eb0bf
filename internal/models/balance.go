package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceAggregate is a row of balance_aggregates.
type BalanceAggregate struct {
	BalanceType   string          `db:"balance_type"` // FRIEND_TO_FRIEND or USER_TO_GROUP
	FirstID       int64           `db:"first_id"`     // lower user id, or the user for group rows
	SecondID      int64           `db:"second_id"`    // higher user id, or the group
	Balance       decimal.Decimal `db:"balance"`
	LastExpenseID int64           `db:"last_expense_id"`
	Version       int64           `db:"version"`
	LastUpdatedAt time.Time       `db:"last_updated_at"`
}
