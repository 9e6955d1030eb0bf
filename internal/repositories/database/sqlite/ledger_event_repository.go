package sqlite

import (
	"context"

	"github.com/SscSPs/splitledger/internal/core/domain"
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	"github.com/SscSPs/splitledger/internal/utils/mapping"
)

type SQLiteLedgerEventRepository struct {
	BaseRepository
}

func newSQLiteLedgerEventRepository(q querier) *SQLiteLedgerEventRepository {
	return &SQLiteLedgerEventRepository{BaseRepository: BaseRepository{DB: q}}
}

var _ portsrepo.LedgerEventWriter = (*SQLiteLedgerEventRepository)(nil)

func (r *SQLiteLedgerEventRepository) SaveLedgerEvent(ctx context.Context, event domain.LedgerEvent) error {
	m, err := mapping.ToModelLedgerEvent(event)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO ledger_events (event_id, event_type, expense_id, actor_id, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?);`,
		m.EventID, m.EventType, m.ExpenseID, m.ActorID, string(m.Data), m.CreatedAt)
	return mapSQLiteError(err, "failed to save ledger event")
}
