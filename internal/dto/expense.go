package dto

import (
	"time"

	"github.com/SscSPs/splitledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ParticipantRequest is one participant's share in a create/update expense request.
type ParticipantRequest struct {
	UserID     int64             `json:"userID" validate:"required,gt=0"`
	OwedAmount decimal.Decimal   `json:"owedAmount"`
	Source     domain.Provenance `json:"source" validate:"required,oneof=FRIEND GROUP"`
	GroupID    *int64            `json:"groupID,omitempty" validate:"omitempty,gt=0"`
	Active     *bool             `json:"active,omitempty"` // defaults to true
}

// CreateExpenseRequest defines the data needed to record a new expense.
type CreateExpenseRequest struct {
	Title        string               `json:"title" validate:"required,max=255"`
	Description  string               `json:"description" validate:"max=1000"`
	Currency     string               `json:"currency" validate:"required,len=3,uppercase"`
	Category     string               `json:"category" validate:"max=64"`
	PayerID      int64                `json:"payerID" validate:"required,gt=0"`
	TotalAmount  decimal.Decimal      `json:"totalAmount"`
	PaidAt       *time.Time           `json:"paidAt,omitempty"` // defaults to now
	Participants []ParticipantRequest `json:"participants" validate:"required,min=1,dive"`
}

// UpdateExpenseRequest replaces every field of an expense, participants included.
type UpdateExpenseRequest CreateExpenseRequest

// SetPaymentStatusRequest marks one participation as paid or unpaid.
type SetPaymentStatusRequest struct {
	Paid *bool `json:"paid" validate:"required"`
}

// ParticipantResponse defines the data returned for a participation.
type ParticipantResponse struct {
	UserID     int64             `json:"userID"`
	OwedAmount decimal.Decimal   `json:"owedAmount"`
	Source     domain.Provenance `json:"source"`
	GroupID    *int64            `json:"groupID,omitempty"`
	Active     bool              `json:"active"`
	Paid       bool              `json:"paid"`
	PaidAt     *time.Time        `json:"paidAt,omitempty"`
}

// ExpenseResponse defines the data returned for an expense.
type ExpenseResponse struct {
	ExpenseID     int64                 `json:"expenseID"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Currency      string                `json:"currency"`
	Category      string                `json:"category"`
	PayerID       int64                 `json:"payerID"`
	TotalAmount   decimal.Decimal       `json:"totalAmount"`
	PaidAt        time.Time             `json:"paidAt"`
	Participants  []ParticipantResponse `json:"participants"`
	CreatedAt     time.Time             `json:"createdAt"`
	CreatedBy     int64                 `json:"createdBy"`
	LastUpdatedAt time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy int64                 `json:"lastUpdatedBy"`
}

// ToParticipations converts request participants into domain participations.
func ToParticipations(reqs []ParticipantRequest) []domain.Participation {
	out := make([]domain.Participation, len(reqs))
	for i, r := range reqs {
		active := true
		if r.Active != nil {
			active = *r.Active
		}
		p := domain.Participation{
			UserID:     r.UserID,
			OwedAmount: r.OwedAmount,
			Provenance: r.Source,
			Active:     active,
		}
		if r.GroupID != nil {
			id := *r.GroupID
			p.ProvenanceID = &id
		}
		out[i] = p
	}
	return out
}

// ListExpensesResponse wraps a list of expenses, newest first.
type ListExpensesResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
}

func ToListExpensesResponse(es []domain.Expense) ListExpensesResponse {
	out := make([]ExpenseResponse, len(es))
	for i := range es {
		out[i] = ToExpenseResponse(&es[i])
	}
	return ListExpensesResponse{Expenses: out}
}

// ToExpenseResponse converts a domain.Expense to ExpenseResponse DTO.
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	participants := make([]ParticipantResponse, len(e.Participations))
	for i, p := range e.Participations {
		participants[i] = ParticipantResponse{
			UserID:     p.UserID,
			OwedAmount: p.OwedAmount,
			Source:     p.Provenance,
			GroupID:    p.ProvenanceID,
			Active:     p.Active,
			Paid:       p.Paid,
			PaidAt:     p.PaidAt,
		}
	}
	return ExpenseResponse{
		ExpenseID:     e.ExpenseID,
		Title:         e.Title,
		Description:   e.Description,
		Currency:      e.Currency,
		Category:      e.Category,
		PayerID:       e.PayerID,
		TotalAmount:   e.TotalAmount,
		PaidAt:        e.PaidAt,
		Participants:  participants,
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
		LastUpdatedAt: e.LastUpdatedAt,
		LastUpdatedBy: e.LastUpdatedBy,
	}
}
