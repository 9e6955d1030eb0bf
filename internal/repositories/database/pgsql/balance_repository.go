package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/splitledger/internal/apperrors"
	"github.com/SscSPs/splitledger/internal/core/domain"
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	"github.com/SscSPs/splitledger/internal/models"
	"github.com/SscSPs/splitledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type PgxBalanceRepository struct {
	BaseRepository
}

// newPgxBalanceRepository creates a balance repository on a pool or an open transaction.
func newPgxBalanceRepository(db dbtx) *PgxBalanceRepository {
	return &PgxBalanceRepository{BaseRepository: BaseRepository{DB: db}}
}

// Ensure PgxBalanceRepository implements portsrepo.BalanceRepositoryFacade
var _ portsrepo.BalanceRepositoryFacade = (*PgxBalanceRepository)(nil)

const balanceColumns = `balance_type, first_id, second_id, balance, last_expense_id, version, last_updated_at`

func scanBalance(row pgx.Row) (models.BalanceAggregate, error) {
	var m models.BalanceAggregate
	err := row.Scan(&m.BalanceType, &m.FirstID, &m.SecondID, &m.Balance, &m.LastExpenseID, &m.Version, &m.LastUpdatedAt)
	return m, err
}

// FindBalance retrieves one aggregate row.
func (r *PgxBalanceRepository) FindBalance(ctx context.Context, key domain.BalanceKey) (*domain.BalanceAggregate, error) {
	query := `SELECT ` + balanceColumns + ` FROM balance_aggregates
		WHERE balance_type = $1 AND first_id = $2 AND second_id = $3;`
	m, err := scanBalance(r.DB.QueryRow(ctx, query, string(key.Type), key.FirstID, key.SecondID))
	if err != nil {
		return nil, mapPgError(err, "failed to find balance "+key.String())
	}
	d := mapping.ToDomainBalanceAggregate(m)
	return &d, nil
}

func (r *PgxBalanceRepository) ListFriendBalancesForUser(ctx context.Context, userID int64) ([]domain.BalanceAggregate, error) {
	query := `SELECT ` + balanceColumns + ` FROM balance_aggregates
		WHERE balance_type = $1 AND (first_id = $2 OR second_id = $2)
		ORDER BY first_id, second_id;`
	return r.list(ctx, "failed to list friend balances", query, string(domain.FriendToFriend), userID)
}

func (r *PgxBalanceRepository) ListGroupBalancesForUser(ctx context.Context, userID int64) ([]domain.BalanceAggregate, error) {
	query := `SELECT ` + balanceColumns + ` FROM balance_aggregates
		WHERE balance_type = $1 AND first_id = $2
		ORDER BY second_id;`
	return r.list(ctx, "failed to list group balances for user", query, string(domain.UserToGroup), userID)
}

func (r *PgxBalanceRepository) ListBalancesForGroup(ctx context.Context, groupID int64) ([]domain.BalanceAggregate, error) {
	query := `SELECT ` + balanceColumns + ` FROM balance_aggregates
		WHERE balance_type = $1 AND second_id = $2
		ORDER BY first_id;`
	return r.list(ctx, "failed to list balances for group", query, string(domain.UserToGroup), groupID)
}

func (r *PgxBalanceRepository) list(ctx context.Context, msg, query string, args ...any) ([]domain.BalanceAggregate, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, msg)
	}
	defer rows.Close()

	ms := []models.BalanceAggregate{}
	for rows.Next() {
		m, err := scanBalance(rows)
		if err != nil {
			return nil, mapPgError(err, msg)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, msg)
	}
	return mapping.ToDomainBalanceAggregateSlice(ms), nil
}

// UpsertBalance creates the row if needed, locks it, and writes fn(current).
func (r *PgxBalanceRepository) UpsertBalance(ctx context.Context, key domain.BalanceKey, expenseID int64, now time.Time, fn domain.BalanceFunc) (*domain.BalanceAggregate, error) {
	var out models.BalanceAggregate
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO balance_aggregates (balance_type, first_id, second_id, balance, last_expense_id, version, last_updated_at)
			VALUES ($1, $2, $3, 0, 0, 0, $4)
			ON CONFLICT (balance_type, first_id, second_id) DO NOTHING;`,
			string(key.Type), key.FirstID, key.SecondID, now)
		if err != nil {
			return err
		}

		current, err := scanBalance(tx.QueryRow(ctx, `SELECT `+balanceColumns+` FROM balance_aggregates
			WHERE balance_type = $1 AND first_id = $2 AND second_id = $3
			FOR UPDATE;`,
			string(key.Type), key.FirstID, key.SecondID))
		if err != nil {
			return err
		}

		out = current
		out.Balance = fn(current.Balance)
		out.LastExpenseID = expenseID
		out.Version = current.Version + 1
		out.LastUpdatedAt = now

		tag, err := tx.Exec(ctx, `
			UPDATE balance_aggregates
			SET balance = $4, last_expense_id = $5, version = $6, last_updated_at = $7
			WHERE balance_type = $1 AND first_id = $2 AND second_id = $3 AND version = $8;`,
			string(key.Type), key.FirstID, key.SecondID,
			out.Balance, out.LastExpenseID, out.Version, out.LastUpdatedAt, current.Version)
		if err != nil {
			return err
		}
		return checkVersionedWrite(tag, key, current.Version)
	})
	if err != nil {
		return nil, mapPgError(err, "failed to upsert balance "+key.String())
	}
	d := mapping.ToDomainBalanceAggregate(out)
	return &d, nil
}

// checkVersionedWrite reports a conflict when the row moved past the version that was read.
func checkVersionedWrite(tag pgconn.CommandTag, key domain.BalanceKey, version int64) error {
	if tag.RowsAffected() == 1 {
		return nil
	}
	return apperrors.NewAppError(409, "balance row changed concurrently",
		fmt.Errorf("%w: %s is no longer at version %d", apperrors.ErrConflict, key, version))
}

// ClearAll deletes every aggregate row.
func (r *PgxBalanceRepository) ClearAll(ctx context.Context) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM balance_aggregates;`)
	if err != nil {
		return 0, mapPgError(err, "failed to clear balances")
	}
	return tag.RowsAffected(), nil
}
