package mapping

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/SscSPs/splitledger/internal/core/domain"
	"github.com/SscSPs/splitledger/internal/models"
)

// ToModelLedgerEvent converts a domain LedgerEvent to a model LedgerEvent
func ToModelLedgerEvent(d domain.LedgerEvent) (models.LedgerEvent, error) {
	data, err := json.Marshal(d.Data)
	if err != nil {
		return models.LedgerEvent{}, fmt.Errorf("failed to encode ledger event data: %w", err)
	}
	m := models.LedgerEvent{
		EventID:   d.EventID.String(),
		EventType: string(d.Type),
		ActorID:   d.ActorID,
		Data:      data,
		CreatedAt: d.CreatedAt,
	}
	if d.ExpenseID != nil {
		m.ExpenseID = sql.NullInt64{Int64: *d.ExpenseID, Valid: true}
	}
	return m, nil
}
