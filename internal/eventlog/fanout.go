package eventlog

import (
	"context"
	"errors"

	"github.com/SscSPs/splitledger/internal/core/domain"
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
)

type fanout []portsrepo.LedgerEventWriter

// Fanout returns a writer that saves every event to each of writers in order.
// A failing writer does not stop the others; their errors are joined.
func Fanout(writers ...portsrepo.LedgerEventWriter) portsrepo.LedgerEventWriter {
	return fanout(writers)
}

func (f fanout) SaveLedgerEvent(ctx context.Context, event domain.LedgerEvent) error {
	var errs []error
	for _, w := range f {
		if err := w.SaveLedgerEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
