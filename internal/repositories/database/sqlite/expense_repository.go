package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/splitledger/internal/apperrors"
	"github.com/SscSPs/splitledger/internal/core/domain"
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	"github.com/SscSPs/splitledger/internal/models"
	"github.com/SscSPs/splitledger/internal/utils/mapping"
)

type SQLiteExpenseRepository struct {
	BaseRepository
}

func newSQLiteExpenseRepository(q querier) *SQLiteExpenseRepository {
	return &SQLiteExpenseRepository{BaseRepository: BaseRepository{DB: q}}
}

var _ portsrepo.ExpenseRepositoryFacade = (*SQLiteExpenseRepository)(nil)

const expenseColumns = `expense_id, title, description, currency, category, payer_id, total_amount, paid_at,
	created_at, created_by, last_updated_at, last_updated_by`

const participantColumns = `expense_id, user_id, owed_amount, provenance, provenance_id, active, paid, paid_at`

func scanExpense(row scanner) (models.Expense, error) {
	var m models.Expense
	err := row.Scan(&m.ExpenseID, &m.Title, &m.Description, &m.Currency, &m.Category, &m.PayerID,
		&m.TotalAmount, &m.PaidAt, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	return m, err
}

func scanParticipant(row scanner) (models.ExpenseParticipant, error) {
	var m models.ExpenseParticipant
	err := row.Scan(&m.ExpenseID, &m.UserID, &m.OwedAmount, &m.Provenance, &m.ProvenanceID, &m.Active, &m.Paid, &m.PaidAt)
	return m, err
}

// FindExpenseByID retrieves an expense and its participations. Inside a transaction
// the database write lock already excludes concurrent edits.
func (r *SQLiteExpenseRepository) FindExpenseByID(ctx context.Context, expenseID int64) (*domain.Expense, error) {
	m, err := scanExpense(r.DB.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE expense_id = ?;`, expenseID))
	if err != nil {
		return nil, mapSQLiteError(err, fmt.Sprintf("failed to find expense %d", expenseID))
	}
	byExpense, err := r.participantsFor(ctx, `WHERE expense_id = ?`, expenseID)
	if err != nil {
		return nil, err
	}
	d := mapping.ToDomainExpense(m, byExpense[expenseID])
	return &d, nil
}

func (r *SQLiteExpenseRepository) ListAllExpenses(ctx context.Context) ([]domain.Expense, error) {
	ms, err := r.scanExpenses(ctx, "failed to list expenses", `SELECT `+expenseColumns+` FROM expenses ORDER BY expense_id;`)
	if err != nil {
		return nil, err
	}
	return r.attachParticipants(ctx, ms, "")
}

// involvesUser matches expenses the user bound to the named parameter paid or participates in.
func involvesUser(param string) string {
	return `(payer_id = ` + param + ` OR EXISTS (
		SELECT 1 FROM expense_participants p
		WHERE p.expense_id = expenses.expense_id AND p.user_id = ` + param + `))`
}

const newestFirst = ` ORDER BY created_at DESC, expense_id DESC`

// sqliteLimit maps a non-positive limit to -1, which SQLite treats as no limit.
func sqliteLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func (r *SQLiteExpenseRepository) ListExpensesForUser(ctx context.Context, userID int64, limit int) ([]domain.Expense, error) {
	return r.queryExpenses(ctx, fmt.Sprintf("failed to list expenses for user %d", userID),
		`SELECT `+expenseColumns+` FROM expenses WHERE `+involvesUser(":user")+newestFirst+` LIMIT :limit;`,
		sql.Named("user", userID), sql.Named("limit", sqliteLimit(limit)))
}

func (r *SQLiteExpenseRepository) ListExpensesForGroup(ctx context.Context, groupID int64) ([]domain.Expense, error) {
	return r.queryExpenses(ctx, fmt.Sprintf("failed to list expenses for group %d", groupID),
		`SELECT `+expenseColumns+` FROM expenses WHERE EXISTS (
			SELECT 1 FROM expense_participants p
			WHERE p.expense_id = expenses.expense_id AND p.provenance = ? AND p.provenance_id = ?)`+newestFirst+`;`,
		string(domain.ProvenanceGroup), groupID)
}

func (r *SQLiteExpenseRepository) ListExpensesBetween(ctx context.Context, userID, otherUserID int64, limit int) ([]domain.Expense, error) {
	return r.queryExpenses(ctx, fmt.Sprintf("failed to list expenses between users %d and %d", userID, otherUserID),
		`SELECT `+expenseColumns+` FROM expenses WHERE `+involvesUser(":user")+` AND `+involvesUser(":other")+newestFirst+` LIMIT :limit;`,
		sql.Named("user", userID), sql.Named("other", otherUserID), sql.Named("limit", sqliteLimit(limit)))
}

// queryExpenses runs an expense query and attaches the participations of every row.
func (r *SQLiteExpenseRepository) queryExpenses(ctx context.Context, msg, query string, args ...any) ([]domain.Expense, error) {
	ms, err := r.scanExpenses(ctx, msg, query, args...)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return []domain.Expense{}, nil
	}
	placeholders := make([]string, len(ms))
	ids := make([]any, len(ms))
	for i, m := range ms {
		placeholders[i] = "?"
		ids[i] = m.ExpenseID
	}
	return r.attachParticipants(ctx, ms, `WHERE expense_id IN (`+strings.Join(placeholders, ", ")+`)`, ids...)
}

func (r *SQLiteExpenseRepository) scanExpenses(ctx context.Context, msg, query string, args ...any) ([]models.Expense, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err, msg)
	}
	defer rows.Close()

	ms := []models.Expense{}
	for rows.Next() {
		m, err := scanExpense(rows)
		if err != nil {
			return nil, mapSQLiteError(err, "failed to scan expense")
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err, msg)
	}
	return ms, nil
}

func (r *SQLiteExpenseRepository) attachParticipants(ctx context.Context, ms []models.Expense, where string, args ...any) ([]domain.Expense, error) {
	byExpense, err := r.participantsFor(ctx, where, args...)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Expense, len(ms))
	for i, m := range ms {
		out[i] = mapping.ToDomainExpense(m, byExpense[m.ExpenseID])
	}
	return out, nil
}

func (r *SQLiteExpenseRepository) participantsFor(ctx context.Context, where string, args ...any) (map[int64][]models.ExpenseParticipant, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+participantColumns+` FROM expense_participants `+where+` ORDER BY expense_id, user_id;`, args...)
	if err != nil {
		return nil, mapSQLiteError(err, "failed to query expense participants")
	}
	defer rows.Close()

	out := make(map[int64][]models.ExpenseParticipant)
	for rows.Next() {
		m, err := scanParticipant(rows)
		if err != nil {
			return nil, mapSQLiteError(err, "failed to scan expense participant")
		}
		out[m.ExpenseID] = append(out[m.ExpenseID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapSQLiteError(err, "failed to query expense participants")
	}
	return out, nil
}

func (r *SQLiteExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) (int64, error) {
	m := mapping.ToModelExpense(expense)
	var id int64
	err := r.withTx(ctx, func(q querier) error {
		res, err := q.ExecContext(ctx, `
			INSERT INTO expenses (title, description, currency, category, payer_id, total_amount, paid_at,
				created_at, created_by, last_updated_at, last_updated_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			m.Title, m.Description, m.Currency, m.Category, m.PayerID, m.TotalAmount.String(), m.PaidAt,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		return insertParticipants(ctx, q, id, expense.Participations)
	})
	if err != nil {
		return 0, mapSQLiteError(err, "failed to save expense")
	}
	return id, nil
}

func (r *SQLiteExpenseRepository) ReplaceExpense(ctx context.Context, expense domain.Expense) error {
	m := mapping.ToModelExpense(expense)
	err := r.withTx(ctx, func(q querier) error {
		res, err := q.ExecContext(ctx, `
			UPDATE expenses
			SET title = ?, description = ?, currency = ?, category = ?, payer_id = ?, total_amount = ?,
				paid_at = ?, last_updated_at = ?, last_updated_by = ?
			WHERE expense_id = ?;`,
			m.Title, m.Description, m.Currency, m.Category, m.PayerID, m.TotalAmount.String(),
			m.PaidAt, m.LastUpdatedAt, m.LastUpdatedBy, m.ExpenseID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("expense %d: %w", expense.ExpenseID, apperrors.ErrNotFound)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM expense_participants WHERE expense_id = ?;`, m.ExpenseID); err != nil {
			return err
		}
		return insertParticipants(ctx, q, m.ExpenseID, expense.Participations)
	})
	return mapSQLiteError(err, fmt.Sprintf("failed to replace expense %d", expense.ExpenseID))
}

func insertParticipants(ctx context.Context, q querier, expenseID int64, ps []domain.Participation) error {
	for _, p := range ps {
		m := mapping.ToModelParticipant(expenseID, p)
		_, err := q.ExecContext(ctx, `INSERT INTO expense_participants (`+participantColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
			m.ExpenseID, m.UserID, m.OwedAmount.String(), m.Provenance, m.ProvenanceID, m.Active, m.Paid, m.PaidAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteExpenseRepository) DeleteExpense(ctx context.Context, expenseID int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM expenses WHERE expense_id = ?;`, expenseID)
	if err != nil {
		return mapSQLiteError(err, fmt.Sprintf("failed to delete expense %d", expenseID))
	}
	if n, err := res.RowsAffected(); err != nil {
		return mapSQLiteError(err, "failed to delete expense")
	} else if n == 0 {
		return fmt.Errorf("expense %d: %w", expenseID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *SQLiteExpenseRepository) UpdateParticipationPayment(ctx context.Context, expenseID, userID int64, paid bool, paidAt *time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE expense_participants SET paid = ?, paid_at = ?
		WHERE expense_id = ? AND user_id = ?;`,
		paid, mapping.ToNullTime(paidAt), expenseID, userID)
	if err != nil {
		return mapSQLiteError(err, "failed to update payment status")
	}
	if n, err := res.RowsAffected(); err != nil {
		return mapSQLiteError(err, "failed to update payment status")
	} else if n == 0 {
		return fmt.Errorf("participant %d in expense %d: %w", userID, expenseID, apperrors.ErrNotFound)
	}
	return nil
}
