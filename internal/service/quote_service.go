package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/caffeinepub/trade-setup-analyzer/internal/marketdata"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
)

// retryCeiling caps the wall-clock length of one auto-retry sequence,
// counted from the first rate limit after a user-initiated fetch. It is a
// second circuit breaker above the coordinator's attempt counter: on a slow
// network three escalating retries could otherwise stretch far past a
// reasonable wait, so exhaustion is reported at the ceiling even while the
// attempt count is still within bounds.
const retryCeiling = 2 * time.Minute

// tickerState is the mutable per-ticker record behind the view snapshots.
type tickerState struct {
	status         model.TickerStatus
	quote          *model.Quote
	lastErr        *model.QuoteError
	attemptCount   int
	nextRetryAt    time.Time
	firstLimitedAt time.Time
	updatedAt      time.Time
}

// QuoteService drives the request coordinator on behalf of the UI and keeps
// the per-ticker view state the frontend renders: lifecycle status, last
// outcome, and live cooldown countdowns. Rate-limited fetches are re-armed
// automatically through the coordinator until either breaker trips.
type QuoteService struct {
	coord *marketdata.Coordinator
	clock marketdata.Clock
	log   zerolog.Logger

	mu     sync.RWMutex
	states map[string]*tickerState
}

// NewQuoteService creates a new QuoteService around the given coordinator.
func NewQuoteService(coord *marketdata.Coordinator, clock marketdata.Clock, log zerolog.Logger) *QuoteService {
	return &QuoteService{
		coord:  coord,
		clock:  clock,
		log:    log,
		states: make(map[string]*tickerState),
	}
}

// Fetch runs one user-initiated quote fetch. The ticker transitions to
// loading, then to success, cooldown, or error depending on the outcome;
// rate limits arm the next scheduled retry unless the retry window is spent.
func (s *QuoteService) Fetch(ctx context.Context, ticker string) (*model.Quote, error) {
	key := marketdata.NormalizeTicker(ticker)
	if key == "" {
		return s.coord.Fetch(ctx, ticker)
	}

	s.mu.Lock()
	st := s.ensureLocked(key)
	st.status = model.StatusLoading
	st.updatedAt = s.clock.Now()
	s.mu.Unlock()

	quote, err := s.coord.Fetch(ctx, key)
	return s.apply(key, quote, err)
}

// apply folds one coordinator outcome into the view state and decides
// whether to arm the next retry. It is called for manual fetches and from
// scheduled-retry completions alike, so the cycle continues until success,
// a terminal error, or a tripped breaker.
func (s *QuoteService) apply(key string, quote *model.Quote, err error) (*model.Quote, error) {
	s.mu.Lock()
	now := s.clock.Now()
	st := s.ensureLocked(key)
	st.updatedAt = now

	if err == nil {
		st.status = model.StatusSuccess
		st.quote = quote
		st.lastErr = nil
		st.attemptCount = 0
		st.nextRetryAt = time.Time{}
		st.firstLimitedAt = time.Time{}
		s.mu.Unlock()
		return quote, nil
	}

	var qe *model.QuoteError
	if !errors.As(err, &qe) {
		// Caller-side context errors end the sequence without a verdict;
		// the dispatch itself keeps running and settles the cache later.
		st.status = model.StatusIdle
		s.mu.Unlock()
		return nil, err
	}

	schedule := false
	switch qe.Code {
	case model.ErrCodeRateLimit:
		rs := s.coord.RetryState(key)
		if rs == nil {
			st.status = model.StatusError
			st.lastErr = qe
			st.nextRetryAt = time.Time{}
			break
		}

		if st.firstLimitedAt.IsZero() {
			st.firstLimitedAt = now
		}
		st.attemptCount = rs.AttemptCount
		st.nextRetryAt = rs.NextRetryAt

		if now.Sub(st.firstLimitedAt) > retryCeiling {
			exhausted := model.NewQuoteError(key, model.ErrCodeRetryExhausted, qe.Provider,
				fmt.Sprintf("still rate limited %s after the first attempt; giving up on %s",
					now.Sub(st.firstLimitedAt).Round(time.Second), key))
			exhausted.RawResponse = qe.RawResponse
			st.status = model.StatusError
			st.lastErr = exhausted
			st.nextRetryAt = time.Time{}
			st.firstLimitedAt = time.Time{}
			s.mu.Unlock()
			s.log.Warn().Str("ticker", key).Msg("retry window exceeded")
			return nil, exhausted
		}

		st.status = model.StatusCooldown
		st.lastErr = qe
		schedule = true

	case model.ErrCodeRetryExhausted:
		st.status = model.StatusError
		st.lastErr = qe
		st.attemptCount = 0
		st.nextRetryAt = time.Time{}
		st.firstLimitedAt = time.Time{}

	default:
		st.status = model.StatusError
		st.lastErr = qe
		st.attemptCount = 0
		st.nextRetryAt = time.Time{}
		st.firstLimitedAt = time.Time{}
	}
	s.mu.Unlock()

	if schedule {
		s.coord.ScheduleRetry(key, func(quote *model.Quote, err error) {
			_, _ = s.apply(key, quote, err)
		})
	}

	return nil, qe
}

// State returns the view snapshot for one ticker. Unknown tickers are idle.
// CooldownSeconds is derived from NextRetryAt at call time.
func (s *QuoteService) State(ticker string) model.TickerViewState {
	key := marketdata.NormalizeTicker(ticker)

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked(key)
}

// States returns snapshots for every ticker the service has seen, sorted by
// symbol.
func (s *QuoteService) States() []model.TickerViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.states))
	for key := range s.states {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	views := make([]model.TickerViewState, 0, len(keys))
	for _, key := range keys {
		views = append(views, s.snapshotLocked(key))
	}
	return views
}

// Diagnostics exposes the coordinator's live snapshot.
func (s *QuoteService) Diagnostics() marketdata.DiagnosticsSnapshot {
	return s.coord.Diagnostics()
}

// Reset drops all view state and clears the coordinator: cache, in-flight
// bookkeeping, retry cycles, and pending timers. Called on session end.
func (s *QuoteService) Reset() {
	s.mu.Lock()
	s.states = make(map[string]*tickerState)
	s.mu.Unlock()

	s.coord.ClearAll()
	s.log.Info().Msg("quote view state reset")
}

func (s *QuoteService) ensureLocked(key string) *tickerState {
	st, ok := s.states[key]
	if !ok {
		st = &tickerState{status: model.StatusIdle}
		s.states[key] = st
	}
	return st
}

func (s *QuoteService) snapshotLocked(key string) model.TickerViewState {
	st, ok := s.states[key]
	if !ok {
		return model.TickerViewState{
			Ticker:     key,
			Status:     model.StatusIdle,
			MaxRetries: marketdata.MaxRetries,
		}
	}

	view := model.TickerViewState{
		Ticker:       key,
		Status:       st.status,
		Quote:        st.quote,
		Error:        st.lastErr,
		AttemptCount: st.attemptCount,
		MaxRetries:   marketdata.MaxRetries,
		UpdatedAt:    st.updatedAt,
	}

	if st.status == model.StatusCooldown && !st.nextRetryAt.IsZero() {
		at := st.nextRetryAt
		view.NextRetryAt = &at
		if remaining := st.nextRetryAt.Sub(s.clock.Now()); remaining > 0 {
			view.CooldownSeconds = remaining.Seconds()
		}
	}

	return view
}
