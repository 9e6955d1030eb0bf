package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/splitledger/internal/core/domain"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByID retrieves an expense and its participations.
	// Inside a transaction the expense row is locked until commit.
	FindExpenseByID(ctx context.Context, expenseID int64) (*domain.Expense, error)

	// ListAllExpenses retrieves every persisted expense with its participations.
	ListAllExpenses(ctx context.Context) ([]domain.Expense, error)

	// ListExpensesForUser retrieves expenses the user paid or participates in, newest first.
	// A non-positive limit returns every match.
	ListExpensesForUser(ctx context.Context, userID int64, limit int) ([]domain.Expense, error)

	// ListExpensesForGroup retrieves expenses with at least one share attributed to the group, newest first.
	ListExpensesForGroup(ctx context.Context, groupID int64) ([]domain.Expense, error)

	// ListExpensesBetween retrieves expenses involving both users as payer or participant, newest first.
	// A non-positive limit returns every match.
	ListExpensesBetween(ctx context.Context, userID, otherUserID int64, limit int) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// SaveExpense persists a new expense and its participations, returning the assigned id.
	SaveExpense(ctx context.Context, expense domain.Expense) (int64, error)

	// ReplaceExpense overwrites an expense and replaces its participations wholesale.
	ReplaceExpense(ctx context.Context, expense domain.Expense) error

	// DeleteExpense removes an expense and its participations.
	DeleteExpense(ctx context.Context, expenseID int64) error

	// UpdateParticipationPayment sets the paid flag of one participation.
	UpdateParticipationPayment(ctx context.Context, expenseID, userID int64, paid bool, paidAt *time.Time) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
