package services

import (
	"context"

	"github.com/SscSPs/splitledger/internal/core/domain"
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
)

// BalanceUpdaterSvc applies expense lifecycle events to the aggregates inside a
// transaction owned by the caller.
type BalanceUpdaterSvc interface {
	// ApplyExpenseCreated adds the expense's contribution to every affected row.
	ApplyExpenseCreated(ctx context.Context, balances portsrepo.BalanceWriter, expense domain.Expense) error

	// ApplyExpenseUpdated reverses the old contribution and adds the new one as a single delta set.
	ApplyExpenseUpdated(ctx context.Context, balances portsrepo.BalanceWriter, old, updated domain.Expense) error

	// ApplyExpenseDeleted removes the expense's contribution.
	ApplyExpenseDeleted(ctx context.Context, balances portsrepo.BalanceWriter, expense domain.Expense) error

	// ApplyPaymentStatusChanged settles or reopens one participation. expense must carry
	// the participation's state from before the change.
	ApplyPaymentStatusChanged(ctx context.Context, balances portsrepo.BalanceWriter, expense domain.Expense, participantUserID int64, isPaid bool) error
}

// BalanceLifecycleSvc applies lifecycle events in their own transaction, retrying on conflicts.
type BalanceLifecycleSvc interface {
	OnExpenseCreated(ctx context.Context, expense domain.Expense) error
	OnExpenseUpdated(ctx context.Context, old, updated domain.Expense) error
	OnExpenseDeleted(ctx context.Context, expense domain.Expense) error
	OnPaymentStatusChanged(ctx context.Context, expense domain.Expense, participantUserID int64, isPaid bool) error
}

// BalanceRecalculatorSvc rebuilds every aggregate from the persisted expenses.
type BalanceRecalculatorSvc interface {
	// RecalculateAll clears all rows and replays every expense, returning how many were replayed.
	RecalculateAll(ctx context.Context) (int, error)
}

// BalanceQuerySvc defines read operations over the aggregates.
type BalanceQuerySvc interface {
	GetUserBalanceSummary(ctx context.Context, userID int64) (*domain.UserBalanceSummary, error)
	GetFriendBalances(ctx context.Context, userID int64) ([]domain.FriendBalance, error)
	GetFriendBalance(ctx context.Context, userID, friendID int64) (*domain.FriendBalance, error)
	GetGroupBalancesForUser(ctx context.Context, userID int64) ([]domain.GroupBalance, error)
	GetGroupBalances(ctx context.Context, groupID int64) ([]domain.GroupBalance, error)
}

// GroupAuthorizerSvc checks group membership of the acting user.
type GroupAuthorizerSvc interface {
	AuthorizeGroupMember(ctx context.Context, groupID, userID int64) error
}

// BalanceSvcFacade combines all balance-related service interfaces
type BalanceSvcFacade interface {
	BalanceUpdaterSvc
	BalanceLifecycleSvc
	BalanceRecalculatorSvc
	BalanceQuerySvc
	GroupAuthorizerSvc
}
