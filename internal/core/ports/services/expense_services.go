package services

import (
	"context"

	"github.com/SscSPs/splitledger/internal/core/domain"
	"github.com/SscSPs/splitledger/internal/dto"
)

// ExpenseReaderSvc defines read operations for expenses
type ExpenseReaderSvc interface {
	// GetExpense retrieves an expense visible to actorID (payer or participant).
	GetExpense(ctx context.Context, expenseID int64, actorID int64) (*domain.Expense, error)

	// ListExpensesForUser returns the user's recent activity: expenses they paid or share, newest first.
	ListExpensesForUser(ctx context.Context, userID int64, limit int) ([]domain.Expense, error)

	// ListExpensesForGroup returns the group's expenses, newest first. actorID must be a member.
	ListExpensesForGroup(ctx context.Context, groupID, actorID int64) ([]domain.Expense, error)

	// ListExpensesBetween returns expenses involving both users, newest first.
	ListExpensesBetween(ctx context.Context, userID, friendID int64, limit int) ([]domain.Expense, error)
}

// ExpenseWriterSvc defines the expense lifecycle. Each operation persists the expense
// and updates the balances in one transaction.
type ExpenseWriterSvc interface {
	CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, actorID int64) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, expenseID int64, req dto.UpdateExpenseRequest, actorID int64) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, expenseID int64, actorID int64) error
	SetPaymentStatus(ctx context.Context, expenseID, participantUserID int64, paid bool, actorID int64) (*domain.Expense, error)
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}

// LedgerEventRecorder accepts audit events for asynchronous persistence.
type LedgerEventRecorder interface {
	Record(ctx context.Context, event domain.LedgerEvent)
}
