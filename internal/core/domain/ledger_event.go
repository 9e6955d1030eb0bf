package domain

import (
	"time"

	"github.com/google/uuid"
)

// LedgerEventType names a balance-affecting event.
type LedgerEventType string

const (
	EventExpenseCreated       LedgerEventType = "EXPENSE_CREATED"
	EventExpenseUpdated       LedgerEventType = "EXPENSE_UPDATED"
	EventExpenseDeleted       LedgerEventType = "EXPENSE_DELETED"
	EventPaymentStatusChanged LedgerEventType = "PAYMENT_STATUS_CHANGED"
	EventBalancesRecalculated LedgerEventType = "BALANCES_RECALCULATED"
)

// LedgerEvent is an audit record of something that moved balances.
type LedgerEvent struct {
	EventID   uuid.UUID       `json:"eventID"`
	Type      LedgerEventType `json:"type"`
	ExpenseID *int64          `json:"expenseID,omitempty"`
	ActorID   int64           `json:"actorID"`
	Data      map[string]any  `json:"data,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// LedgerEventOption customizes a LedgerEvent.
type LedgerEventOption func(*LedgerEvent)

// WithExpense attaches the expense id.
func WithExpense(expenseID int64) LedgerEventOption {
	return func(e *LedgerEvent) {
		e.ExpenseID = &expenseID
	}
}

// WithActor attaches the acting user.
func WithActor(userID int64) LedgerEventOption {
	return func(e *LedgerEvent) {
		e.ActorID = userID
	}
}

// WithData sets one data attribute.
func WithData(key string, value any) LedgerEventOption {
	return func(e *LedgerEvent) {
		e.Data[key] = value
	}
}

// NewLedgerEvent builds an event with a fresh id.
func NewLedgerEvent(eventType LedgerEventType, opts ...LedgerEventOption) LedgerEvent {
	e := LedgerEvent{
		EventID:   uuid.New(),
		Type:      eventType,
		Data:      make(map[string]any),
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
