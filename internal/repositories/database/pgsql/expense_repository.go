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
)

type PgxExpenseRepository struct {
	BaseRepository
	lockRows bool // lock expense rows read through FindExpenseByID until commit
}

// newPgxExpenseRepository creates an expense repository. Repositories bound to a
// transaction should pass lockRows so concurrent edits of one expense serialize.
func newPgxExpenseRepository(db dbtx, lockRows bool) *PgxExpenseRepository {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{DB: db}, lockRows: lockRows}
}

// Ensure PgxExpenseRepository implements portsrepo.ExpenseRepositoryFacade
var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

const expenseColumns = `expense_id, title, description, currency, category, payer_id, total_amount, paid_at,
	created_at, created_by, last_updated_at, last_updated_by`

const participantColumns = `expense_id, user_id, owed_amount, provenance, provenance_id, active, paid, paid_at`

func scanExpense(row pgx.Row) (models.Expense, error) {
	var m models.Expense
	err := row.Scan(&m.ExpenseID, &m.Title, &m.Description, &m.Currency, &m.Category, &m.PayerID,
		&m.TotalAmount, &m.PaidAt, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	return m, err
}

func scanParticipant(row pgx.Row) (models.ExpenseParticipant, error) {
	var m models.ExpenseParticipant
	err := row.Scan(&m.ExpenseID, &m.UserID, &m.OwedAmount, &m.Provenance, &m.ProvenanceID, &m.Active, &m.Paid, &m.PaidAt)
	return m, err
}

// FindExpenseByID retrieves an expense and its participations.
func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID int64) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_id = $1`
	if r.lockRows {
		query += ` FOR UPDATE`
	}
	m, err := scanExpense(r.DB.QueryRow(ctx, query, expenseID))
	if err != nil {
		return nil, mapPgError(err, fmt.Sprintf("failed to find expense %d", expenseID))
	}

	byExpense, err := r.participantsFor(ctx, `WHERE expense_id = $1`, expenseID)
	if err != nil {
		return nil, err
	}
	d := mapping.ToDomainExpense(m, byExpense[expenseID])
	return &d, nil
}

// ListAllExpenses retrieves every expense ordered by id.
func (r *PgxExpenseRepository) ListAllExpenses(ctx context.Context) ([]domain.Expense, error) {
	return r.queryExpenses(ctx, "failed to list expenses",
		`SELECT `+expenseColumns+` FROM expenses ORDER BY expense_id;`)
}

// involves matches expenses the user at the given placeholder paid or participates in.
func involves(placeholder string) string {
	return `(payer_id = ` + placeholder + ` OR EXISTS (
		SELECT 1 FROM expense_participants p
		WHERE p.expense_id = expenses.expense_id AND p.user_id = ` + placeholder + `))`
}

const newestFirst = ` ORDER BY created_at DESC, expense_id DESC`

// limitArg maps a non-positive limit to NULL, which LIMIT treats as no limit.
func limitArg(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

// ListExpensesForUser retrieves expenses the user paid or participates in, newest first.
func (r *PgxExpenseRepository) ListExpensesForUser(ctx context.Context, userID int64, limit int) ([]domain.Expense, error) {
	return r.queryExpenses(ctx, fmt.Sprintf("failed to list expenses for user %d", userID),
		`SELECT `+expenseColumns+` FROM expenses WHERE `+involves("$1")+newestFirst+` LIMIT $2;`,
		userID, limitArg(limit))
}

// ListExpensesForGroup retrieves expenses with a share attributed to the group, newest first.
func (r *PgxExpenseRepository) ListExpensesForGroup(ctx context.Context, groupID int64) ([]domain.Expense, error) {
	return r.queryExpenses(ctx, fmt.Sprintf("failed to list expenses for group %d", groupID),
		`SELECT `+expenseColumns+` FROM expenses WHERE EXISTS (
			SELECT 1 FROM expense_participants p
			WHERE p.expense_id = expenses.expense_id AND p.provenance = $1 AND p.provenance_id = $2)`+newestFirst+`;`,
		string(domain.ProvenanceGroup), groupID)
}

// ListExpensesBetween retrieves expenses involving both users, newest first.
func (r *PgxExpenseRepository) ListExpensesBetween(ctx context.Context, userID, otherUserID int64, limit int) ([]domain.Expense, error) {
	return r.queryExpenses(ctx, fmt.Sprintf("failed to list expenses between users %d and %d", userID, otherUserID),
		`SELECT `+expenseColumns+` FROM expenses WHERE `+involves("$1")+` AND `+involves("$2")+newestFirst+` LIMIT $3;`,
		userID, otherUserID, limitArg(limit))
}

// queryExpenses runs an expense query and attaches the participations of every row.
func (r *PgxExpenseRepository) queryExpenses(ctx context.Context, msg, query string, args ...any) ([]domain.Expense, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, msg)
	}
	ms := []models.Expense{}
	for rows.Next() {
		m, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, mapPgError(err, "failed to scan expense")
		}
		ms = append(ms, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, msg)
	}

	out := make([]domain.Expense, len(ms))
	if len(ms) == 0 {
		return out, nil
	}
	ids := make([]int64, len(ms))
	for i, m := range ms {
		ids[i] = m.ExpenseID
	}
	byExpense, err := r.participantsFor(ctx, `WHERE expense_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for i, m := range ms {
		out[i] = mapping.ToDomainExpense(m, byExpense[m.ExpenseID])
	}
	return out, nil
}

func (r *PgxExpenseRepository) participantsFor(ctx context.Context, where string, args ...any) (map[int64][]models.ExpenseParticipant, error) {
	query := `SELECT ` + participantColumns + ` FROM expense_participants ` + where + ` ORDER BY expense_id, user_id;`
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "failed to query expense participants")
	}
	defer rows.Close()

	out := make(map[int64][]models.ExpenseParticipant)
	for rows.Next() {
		m, err := scanParticipant(rows)
		if err != nil {
			return nil, mapPgError(err, "failed to scan expense participant")
		}
		out[m.ExpenseID] = append(out[m.ExpenseID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "failed to query expense participants")
	}
	return out, nil
}

// SaveExpense inserts the expense and its participations, returning the new id.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) (int64, error) {
	m := mapping.ToModelExpense(expense)
	var id int64
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO expenses (title, description, currency, category, payer_id, total_amount, paid_at,
				created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING expense_id;`,
			m.Title, m.Description, m.Currency, m.Category, m.PayerID, m.TotalAmount, m.PaidAt,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		).Scan(&id)
		if err != nil {
			return err
		}
		return insertParticipants(ctx, tx, id, expense.Participations)
	})
	if err != nil {
		return 0, mapPgError(err, "failed to save expense")
	}
	return id, nil
}

// ReplaceExpense overwrites the expense row and replaces its participations.
func (r *PgxExpenseRepository) ReplaceExpense(ctx context.Context, expense domain.Expense) error {
	m := mapping.ToModelExpense(expense)
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE expenses
			SET title = $2, description = $3, currency = $4, category = $5, payer_id = $6, total_amount = $7,
				paid_at = $8, last_updated_at = $9, last_updated_by = $10
			WHERE expense_id = $1;`,
			m.ExpenseID, m.Title, m.Description, m.Currency, m.Category, m.PayerID, m.TotalAmount,
			m.PaidAt, m.LastUpdatedAt, m.LastUpdatedBy)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("expense %d: %w", expense.ExpenseID, apperrors.ErrNotFound)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM expense_participants WHERE expense_id = $1;`, m.ExpenseID); err != nil {
			return err
		}
		return insertParticipants(ctx, tx, m.ExpenseID, expense.Participations)
	})
	return mapPgError(err, fmt.Sprintf("failed to replace expense %d", expense.ExpenseID))
}

func insertParticipants(ctx context.Context, tx pgx.Tx, expenseID int64, ps []domain.Participation) error {
	batch := &pgx.Batch{}
	query := `INSERT INTO expense_participants (` + participantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	for _, p := range ps {
		m := mapping.ToModelParticipant(expenseID, p)
		batch.Queue(query, m.ExpenseID, m.UserID, m.OwedAmount, m.Provenance, m.ProvenanceID, m.Active, m.Paid, m.PaidAt)
	}
	br := tx.SendBatch(ctx, batch)
	for range ps {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	return br.Close()
}

// DeleteExpense removes the expense; participations go with it through ON DELETE CASCADE.
func (r *PgxExpenseRepository) DeleteExpense(ctx context.Context, expenseID int64) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM expenses WHERE expense_id = $1;`, expenseID)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("failed to delete expense %d", expenseID))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %d: %w", expenseID, apperrors.ErrNotFound)
	}
	return nil
}

// UpdateParticipationPayment sets the paid flag of one participation.
func (r *PgxExpenseRepository) UpdateParticipationPayment(ctx context.Context, expenseID, userID int64, paid bool, paidAt *time.Time) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE expense_participants SET paid = $3, paid_at = $4
		WHERE expense_id = $1 AND user_id = $2;`,
		expenseID, userID, paid, mapping.ToNullTime(paidAt))
	if err != nil {
		return mapPgError(err, "failed to update payment status")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("participant %d in expense %d: %w", userID, expenseID, apperrors.ErrNotFound)
	}
	return nil
}
