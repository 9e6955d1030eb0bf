package pgsql

import (
	"context"

	"github.com/SscSPs/splitledger/internal/core/domain"
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	"github.com/SscSPs/splitledger/internal/utils/mapping"
)

type PgxLedgerEventRepository struct {
	BaseRepository
}

func newPgxLedgerEventRepository(db dbtx) *PgxLedgerEventRepository {
	return &PgxLedgerEventRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.LedgerEventWriter = (*PgxLedgerEventRepository)(nil)

// SaveLedgerEvent appends one audit event.
func (r *PgxLedgerEventRepository) SaveLedgerEvent(ctx context.Context, event domain.LedgerEvent) error {
	m, err := mapping.ToModelLedgerEvent(event)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, `
		INSERT INTO ledger_events (event_id, event_type, expense_id, actor_id, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);`,
		m.EventID, m.EventType, m.ExpenseID, m.ActorID, m.Data, m.CreatedAt)
	return mapPgError(err, "failed to save ledger event")
}
