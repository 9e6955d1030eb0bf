package mapping

import (
	"database/sql"
	"time"

	"github.com/SscSPs/splitledger/internal/core/domain"
	"github.com/SscSPs/splitledger/internal/models"
)

// ToModelExpense converts a domain Expense to a model Expense, without participations
func ToModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ExpenseID:   d.ExpenseID,
		Title:       d.Title,
		Description: d.Description,
		Currency:    d.Currency,
		Category:    d.Category,
		PayerID:     d.PayerID,
		TotalAmount: d.TotalAmount,
		PaidAt:      d.PaidAt,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToModelParticipant converts a domain Participation to a model ExpenseParticipant
func ToModelParticipant(expenseID int64, d domain.Participation) models.ExpenseParticipant {
	m := models.ExpenseParticipant{
		ExpenseID:  expenseID,
		UserID:     d.UserID,
		OwedAmount: d.OwedAmount,
		Provenance: string(d.Provenance),
		Active:     d.Active,
		Paid:       d.Paid,
	}
	if d.ProvenanceID != nil {
		m.ProvenanceID = sql.NullInt64{Int64: *d.ProvenanceID, Valid: true}
	}
	if d.PaidAt != nil {
		m.PaidAt = sql.NullTime{Time: *d.PaidAt, Valid: true}
	}
	return m
}

// ToDomainParticipation converts a model ExpenseParticipant to a domain Participation
func ToDomainParticipation(m models.ExpenseParticipant) domain.Participation {
	d := domain.Participation{
		ExpenseID:  m.ExpenseID,
		UserID:     m.UserID,
		OwedAmount: m.OwedAmount,
		Provenance: domain.Provenance(m.Provenance),
		Active:     m.Active,
		Paid:       m.Paid,
	}
	if m.ProvenanceID.Valid {
		id := m.ProvenanceID.Int64
		d.ProvenanceID = &id
	}
	if m.PaidAt.Valid {
		at := m.PaidAt.Time.UTC()
		d.PaidAt = &at
	}
	return d
}

// ToDomainExpense converts a model Expense and its participant rows to a domain Expense
func ToDomainExpense(m models.Expense, participants []models.ExpenseParticipant) domain.Expense {
	ps := make([]domain.Participation, len(participants))
	for i, p := range participants {
		ps[i] = ToDomainParticipation(p)
	}
	return domain.Expense{
		ExpenseID:      m.ExpenseID,
		Title:          m.Title,
		Description:    m.Description,
		Currency:       m.Currency,
		Category:       m.Category,
		PayerID:        m.PayerID,
		TotalAmount:    m.TotalAmount,
		PaidAt:         m.PaidAt.UTC(),
		Participations: ps,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToNullTime converts an optional time to sql.NullTime
func ToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
