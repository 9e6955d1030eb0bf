package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/splitledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Provenance records how a participant was added to an expense.
type Provenance string

const (
	ProvenanceFriend Provenance = "FRIEND"
	ProvenanceGroup  Provenance = "GROUP"
)

// DefaultAmountTolerance is the largest allowed gap between an expense total and the
// sum of its participant shares.
var DefaultAmountTolerance = decimal.New(1, -2)

// Participation is one user's owed share of one expense.
type Participation struct {
	ExpenseID    int64           `json:"expenseID"`
	UserID       int64           `json:"userID"`
	OwedAmount   decimal.Decimal `json:"owedAmount"`
	Provenance   Provenance      `json:"provenance"`
	ProvenanceID *int64          `json:"provenanceID,omitempty"` // group id when Provenance is GROUP
	Active       bool            `json:"active"`
	Paid         bool            `json:"paid"`
	PaidAt       *time.Time      `json:"paidAt,omitempty"`
}

// GroupID returns the group the participation was added through, if any.
func (p Participation) GroupID() (int64, bool) {
	if p.Provenance != ProvenanceGroup || p.ProvenanceID == nil {
		return 0, false
	}
	return *p.ProvenanceID, true
}

// Expense is a single shared expense and its participations.
type Expense struct {
	ExpenseID      int64           `json:"expenseID"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Currency       string          `json:"currency"`
	Category       string          `json:"category"`
	PayerID        int64           `json:"payerID"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	PaidAt         time.Time       `json:"paidAt"`
	Participations []Participation `json:"participations"`
	AuditFields
}

// Participant returns the participation of userID, if present.
func (e Expense) Participant(userID int64) (Participation, bool) {
	for _, p := range e.Participations {
		if p.UserID == userID {
			return p, true
		}
	}
	return Participation{}, false
}

// IsPayerOrParticipant reports whether userID may edit the expense.
func (e Expense) IsPayerOrParticipant(userID int64) bool {
	if e.PayerID == userID {
		return true
	}
	_, ok := e.Participant(userID)
	return ok
}

// HasGroupShare reports whether any participation was added through groupID.
func (e Expense) HasGroupShare(groupID int64) bool {
	for _, p := range e.Participations {
		if id, ok := p.GroupID(); ok && id == groupID {
			return true
		}
	}
	return false
}

// NewestFirst orders expenses by creation time, most recent first, breaking ties by id.
func NewestFirst(expenses []Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		if !expenses[i].CreatedAt.Equal(expenses[j].CreatedAt) {
			return expenses[i].CreatedAt.After(expenses[j].CreatedAt)
		}
		return expenses[i].ExpenseID > expenses[j].ExpenseID
	})
}

// ShareTotal sums the owed amounts of all participations.
func (e Expense) ShareTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range e.Participations {
		total = total.Add(p.OwedAmount)
	}
	return total
}

// Clone returns a copy that shares no slices or pointers with e.
func (e Expense) Clone() Expense {
	out := e
	out.Participations = make([]Participation, len(e.Participations))
	for i, p := range e.Participations {
		if p.ProvenanceID != nil {
			id := *p.ProvenanceID
			p.ProvenanceID = &id
		}
		if p.PaidAt != nil {
			at := *p.PaidAt
			p.PaidAt = &at
		}
		out.Participations[i] = p
	}
	return out
}

// Validate checks the structural invariants of an expense: a payer, a positive
// total, non-negative shares that add up to the total within tolerance, one
// participation per user and a group id on every GROUP participation.
func (e Expense) Validate(tolerance decimal.Decimal) error {
	if e.PayerID <= 0 {
		return fmt.Errorf("%w: payer is required", apperrors.ErrValidation)
	}
	if !e.TotalAmount.IsPositive() {
		return fmt.Errorf("%w: expense amount must be positive", apperrors.ErrValidation)
	}
	if len(e.Participations) == 0 {
		return fmt.Errorf("%w: expense must have at least one participant", apperrors.ErrValidation)
	}

	seen := make(map[int64]struct{}, len(e.Participations))
	for _, p := range e.Participations {
		if p.UserID <= 0 {
			return fmt.Errorf("%w: participant user id is required", apperrors.ErrValidation)
		}
		if _, dup := seen[p.UserID]; dup {
			return fmt.Errorf("%w: duplicate participant %d", apperrors.ErrInvalidOperation, p.UserID)
		}
		seen[p.UserID] = struct{}{}

		if p.OwedAmount.IsNegative() {
			return fmt.Errorf("%w: share of participant %d must not be negative", apperrors.ErrValidation, p.UserID)
		}
		switch p.Provenance {
		case ProvenanceFriend:
		case ProvenanceGroup:
			if p.ProvenanceID == nil {
				return fmt.Errorf("%w: group id is required for GROUP participant %d", apperrors.ErrInvalidOperation, p.UserID)
			}
		default:
			return fmt.Errorf("%w: unknown participant source %q", apperrors.ErrValidation, p.Provenance)
		}
	}

	shares := e.ShareTotal()
	if e.TotalAmount.Sub(shares).Abs().GreaterThan(tolerance) {
		return fmt.Errorf("%w: total participant amount (%s) does not match expense amount (%s)",
			apperrors.ErrInvalidOperation, shares.String(), e.TotalAmount.String())
	}
	return nil
}
