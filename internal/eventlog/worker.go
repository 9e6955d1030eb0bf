// Package eventlog persists ledger events off the request path.
package eventlog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SscSPs/splitledger/internal/core/domain"
	portsrepo "github.com/SscSPs/splitledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/splitledger/internal/core/ports/services"
	"github.com/SscSPs/splitledger/internal/middleware"
)

// Worker buffers ledger events and saves them from a single goroutine.
// Events that do not fit in the buffer are dropped with a warning.
type Worker struct {
	eventCh chan domain.LedgerEvent
	repo    portsrepo.LedgerEventWriter
	logger  *slog.Logger
	wg      sync.WaitGroup

	// mu guards stopped and the close of eventCh against concurrent sends.
	mu      sync.Mutex
	stopped bool
}

var _ portssvc.LedgerEventRecorder = (*Worker)(nil)

func NewWorker(repo portsrepo.LedgerEventWriter, bufferSize int, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		eventCh: make(chan domain.LedgerEvent, bufferSize),
		repo:    repo,
		logger:  logger,
	}
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		// runs until Shutdown closes the channel and the buffer is empty
		for event := range w.eventCh {
			w.save(context.Background(), event)
		}
	}()
}

func (w *Worker) save(ctx context.Context, event domain.LedgerEvent) {
	if err := w.repo.SaveLedgerEvent(ctx, event); err != nil {
		w.logger.Error("failed to save ledger event",
			"error", err,
			"event_type", event.Type,
			"event_id", event.EventID.String())
	}
}

// Record queues an event without blocking. The request id of ctx, if any, is attached.
func (w *Worker) Record(ctx context.Context, event domain.LedgerEvent) {
	if requestID := middleware.GetRequestIDFromCtx(ctx); requestID != "" {
		if event.Data == nil {
			event.Data = make(map[string]any)
		}
		event.Data["requestID"] = requestID
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		w.logger.Warn("ledger event worker stopped, dropping event", "event_type", event.Type)
		return
	}
	select {
	case w.eventCh <- event:
	default:
		middleware.GetLoggerFromCtx(ctx).Warn("ledger event channel full, dropping event", "event_type", event.Type)
	}
}

// Shutdown stops accepting events and waits until every queued event is saved.
// It is safe to call more than once.
func (w *Worker) Shutdown() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		w.logger.Info("draining ledger events before shutdown", "remaining_events", len(w.eventCh))
		close(w.eventCh)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
