package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/splitledger/internal/core/domain"
)

// BalanceReader defines read operations for balance aggregates
type BalanceReader interface {
	// FindBalance retrieves one aggregate row. Returns apperrors.ErrNotFound when the row does not exist.
	FindBalance(ctx context.Context, key domain.BalanceKey) (*domain.BalanceAggregate, error)

	// ListFriendBalancesForUser retrieves every friend row the user is part of, on either side.
	ListFriendBalancesForUser(ctx context.Context, userID int64) ([]domain.BalanceAggregate, error)

	// ListGroupBalancesForUser retrieves the user's rows with every group.
	ListGroupBalancesForUser(ctx context.Context, userID int64) ([]domain.BalanceAggregate, error)

	// ListBalancesForGroup retrieves every member row of a group.
	ListBalancesForGroup(ctx context.Context, groupID int64) ([]domain.BalanceAggregate, error)
}

// BalanceWriter defines write operations for balance aggregates
type BalanceWriter interface {
	// UpsertBalance atomically replaces the balance of key with fn(current), where current
	// is zero if the row does not exist yet, and stamps expenseID as the last contributor.
	UpsertBalance(ctx context.Context, key domain.BalanceKey, expenseID int64, now time.Time, fn domain.BalanceFunc) (*domain.BalanceAggregate, error)

	// ClearAll deletes every aggregate row and returns how many were removed.
	ClearAll(ctx context.Context) (int64, error)
}

// BalanceRepositoryFacade combines all balance-related repository interfaces
type BalanceRepositoryFacade interface {
	BalanceReader
	BalanceWriter
}
