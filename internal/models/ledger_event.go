package models

import (
	"database/sql"
	"time"
)

// LedgerEvent is a row of ledger_events. Data holds the JSON-encoded attributes.
type LedgerEvent struct {
	EventID   string        `db:"event_id"`
	EventType string        `db:"event_type"`
	ExpenseID sql.NullInt64 `db:"expense_id"`
	ActorID   int64         `db:"actor_id"`
	Data      []byte        `db:"data"`
	CreatedAt time.Time     `db:"created_at"`
}
