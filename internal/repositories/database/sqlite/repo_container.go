package sqlite

import (
	"database/sql"

	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every repository port to db, which must have been
// opened with database.SQLiteDSN.
func NewRepositoryProvider(db *sql.DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		BalanceRepo:    newSQLiteBalanceRepository(db),
		ExpenseRepo:    newSQLiteExpenseRepository(db),
		MembershipRepo: newSQLiteMembershipRepository(db),
		EventRepo:      newSQLiteLedgerEventRepository(db),
		TxManager:      newSQLiteTxManager(db),
	}
}
