package repositories

import "context"

// TxRepositories are the repositories bound to one open transaction.
type TxRepositories struct {
	Balances BalanceRepositoryFacade
	Expenses ExpenseRepositoryFacade
}

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// WithinTx runs fn inside a single transaction. The transaction commits when fn
	// returns nil and rolls back otherwise. Lock timeouts and serialization failures
	// are reported as apperrors.ErrConflict.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}
