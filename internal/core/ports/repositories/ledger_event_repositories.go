package repositories

import (
	"context"

	"github.com/SscSPs/splitledger/internal/core/domain"
)

// LedgerEventWriter persists audit events.
type LedgerEventWriter interface {
	SaveLedgerEvent(ctx context.Context, event domain.LedgerEvent) error
}
