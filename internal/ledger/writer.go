// Package ledger persists completed analyses off the request path. A single
// writer goroutine owns every insert into the trade_setup table, so request
// handlers hand off a setup and return without waiting on disk.
package ledger

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/repository"
)

const submitBuffer = 64

// Writer is the single-goroutine actor behind analysis persistence.
type Writer struct {
	repo *repository.AnalysisRepository
	log  zerolog.Logger

	input chan model.TradeSetup
	done  chan struct{}

	mu       sync.Mutex
	closed   bool
	failures atomic.Int64
}

// NewWriter starts the writer goroutine. Call Close before shutdown to
// drain buffered setups.
func NewWriter(repo *repository.AnalysisRepository, log zerolog.Logger) *Writer {
	w := &Writer{
		repo:  repo,
		log:   log,
		input: make(chan model.TradeSetup, submitBuffer),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit queues one setup for persistence and returns it with the ID and
// creation time filled in. The returned value is complete before the row
// exists; reads that follow immediately may not see it yet.
func (w *Writer) Submit(setup model.TradeSetup) (model.TradeSetup, error) {
	if setup.ID == "" {
		setup.ID = uuid.New().String()
	}
	if setup.CreatedAt.IsZero() {
		setup.CreatedAt = time.Now().UTC()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return model.TradeSetup{}, apperrors.ErrLedgerClosed
	}
	w.input <- setup

	return setup, nil
}

// Close stops accepting setups, waits for the queue to drain, and reports
// whether any buffered write failed. Safe to call more than once.
func (w *Writer) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.input)
	}
	w.mu.Unlock()

	<-w.done

	if n := w.failures.Load(); n > 0 {
		return fmt.Errorf("%d trade setup writes failed", n)
	}
	return nil
}

func (w *Writer) run() {
	defer close(w.done)

	for setup := range w.input {
		if err := w.repo.Create(setup); err != nil {
			w.failures.Add(1)
			w.log.Error().Err(err).
				Str("id", setup.ID).
				Str("ticker", setup.Ticker).
				Msg("persisting trade setup failed")
			continue
		}
		w.log.Debug().Str("id", setup.ID).Str("ticker", setup.Ticker).Msg("trade setup persisted")
	}
}
