package sqlite

import (
	"context"
	"time"

	"github.com/SscSPs/splitledger/internal/core/domain"
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	"github.com/SscSPs/splitledger/internal/models"
	"github.com/SscSPs/splitledger/internal/utils/mapping"
)

type SQLiteBalanceRepository struct {
	BaseRepository
}

func newSQLiteBalanceRepository(q querier) *SQLiteBalanceRepository {
	return &SQLiteBalanceRepository{BaseRepository: BaseRepository{DB: q}}
}

var _ portsrepo.BalanceRepositoryFacade = (*SQLiteBalanceRepository)(nil)

const balanceColumns = `balance_type, first_id, second_id, balance, last_expense_id, version, last_updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBalance(row scanner) (models.BalanceAggregate, error) {
	var m models.BalanceAggregate
	err := row.Scan(&m.BalanceType, &m.FirstID, &m.SecondID, &m.Balance, &m.LastExpenseID, &m.Version, &m.LastUpdatedAt)
	return m, err
}

func (r *SQLiteBalanceRepository) FindBalance(ctx context.Context, key domain.BalanceKey) (*domain.BalanceAggregate, error) {
	m, err := scanBalance(r.DB.QueryRowContext(ctx, `SELECT `+balanceColumns+` FROM balance_aggregates
		WHERE balance_type = ? AND first_id = ? AND second_id = ?;`,
		string(key.Type), key.FirstID, key.SecondID))
	if err != nil {
		return nil, mapSQLiteError(err, "failed to find balance "+key.String())
	}
	d := mapping.ToDomainBalanceAggregate(m)
	return &d, nil
}

func (r *SQLiteBalanceRepository) ListFriendBalancesForUser(ctx context.Context, userID int64) ([]domain.BalanceAggregate, error) {
	return r.list(ctx, "failed to list friend balances", `SELECT `+balanceColumns+` FROM balance_aggregates
		WHERE balance_type = ? AND (first_id = ? OR second_id = ?)
		ORDER BY first_id, second_id;`, string(domain.FriendToFriend), userID, userID)
}

func (r *SQLiteBalanceRepository) ListGroupBalancesForUser(ctx context.Context, userID int64) ([]domain.BalanceAggregate, error) {
	return r.list(ctx, "failed to list group balances for user", `SELECT `+balanceColumns+` FROM balance_aggregates
		WHERE balance_type = ? AND first_id = ?
		ORDER BY second_id;`, string(domain.UserToGroup), userID)
}

func (r *SQLiteBalanceRepository) ListBalancesForGroup(ctx context.Context, groupID int64) ([]domain.BalanceAggregate, error) {
	return r.list(ctx, "failed to list balances for group", `SELECT `+balanceColumns+` FROM balance_aggregates
		WHERE balance_type = ? AND second_id = ?
		ORDER BY first_id;`, string(domain.UserToGroup), groupID)
}

func (r *SQLiteBalanceRepository) list(ctx context.Context, msg, query string, args ...any) ([]domain.BalanceAggregate, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err, msg)
	}
	defer rows.Close()

	ms := []models.BalanceAggregate{}
	for rows.Next() {
		m, err := scanBalance(rows)
		if err != nil {
			return nil, mapSQLiteError(err, msg)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err, msg)
	}
	return mapping.ToDomainBalanceAggregateSlice(ms), nil
}

// UpsertBalance creates the row if needed and writes fn(current). The surrounding
// transaction already holds the database write lock.
func (r *SQLiteBalanceRepository) UpsertBalance(ctx context.Context, key domain.BalanceKey, expenseID int64, now time.Time, fn domain.BalanceFunc) (*domain.BalanceAggregate, error) {
	var out models.BalanceAggregate
	err := r.withTx(ctx, func(q querier) error {
		_, err := q.ExecContext(ctx, `
			INSERT INTO balance_aggregates (balance_type, first_id, second_id, balance, last_expense_id, version, last_updated_at)
			VALUES (?, ?, ?, '0', 0, 0, ?)
			ON CONFLICT (balance_type, first_id, second_id) DO NOTHING;`,
			string(key.Type), key.FirstID, key.SecondID, now)
		if err != nil {
			return err
		}

		current, err := scanBalance(q.QueryRowContext(ctx, `SELECT `+balanceColumns+` FROM balance_aggregates
			WHERE balance_type = ? AND first_id = ? AND second_id = ?;`,
			string(key.Type), key.FirstID, key.SecondID))
		if err != nil {
			return err
		}

		out = current
		out.Balance = fn(current.Balance)
		out.LastExpenseID = expenseID
		out.Version = current.Version + 1
		out.LastUpdatedAt = now

		_, err = q.ExecContext(ctx, `
			UPDATE balance_aggregates
			SET balance = ?, last_expense_id = ?, version = ?, last_updated_at = ?
			WHERE balance_type = ? AND first_id = ? AND second_id = ?;`,
			out.Balance.String(), out.LastExpenseID, out.Version, out.LastUpdatedAt,
			string(key.Type), key.FirstID, key.SecondID)
		return err
	})
	if err != nil {
		return nil, mapSQLiteError(err, "failed to upsert balance "+key.String())
	}
	d := mapping.ToDomainBalanceAggregate(out)
	return &d, nil
}

func (r *SQLiteBalanceRepository) ClearAll(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM balance_aggregates;`)
	if err != nil {
		return 0, mapSQLiteError(err, "failed to clear balances")
	}
	return res.RowsAffected()
}
