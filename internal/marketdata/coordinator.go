package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
)

// Fetcher is the raw-fetch collaborator: one upstream call for one ticker,
// returning either a quote or a classified *model.QuoteError.
type Fetcher interface {
	FetchQuote(ctx context.Context, ticker string) (*model.Quote, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, ticker string) (*model.Quote, error)

// FetchQuote calls f.
func (f FetcherFunc) FetchQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	return f(ctx, ticker)
}

type cacheEntry struct {
	quote    *model.Quote
	storedAt time.Time
}

// inflightCall is the shared outcome of one upstream dispatch. quote/err are
// written before done is closed; every caller that joined the call reads the
// same settled result.
type inflightCall struct {
	done  chan struct{}
	quote *model.Quote
	err   error
}

type requestState struct {
	lastRequestAt time.Time
	inflight      *inflightCall
}

type retryState struct {
	attemptCount int
	nextRetryAt  time.Time
	timer        Timer
}

// Coordinator owns per-ticker cache, in-flight, spacing, and retry state for
// quote fetches. It is constructed explicitly and passed to its consumers;
// there is no package-level instance. All state lives in memory for the
// lifetime of the coordinator or until ClearAll.
type Coordinator struct {
	fetcher Fetcher
	clock   Clock
	log     zerolog.Logger

	cacheTTL    time.Duration
	minInterval time.Duration
	maxRetries  int

	mu       sync.Mutex
	cache    map[string]*cacheEntry
	requests map[string]*requestState
	retries  map[string]*retryState

	hits         uint64
	misses       uint64
	lastRequest  *RequestInfo
	lastResponse *ResponseInfo
}

// Option adjusts coordinator construction.
type Option func(*Coordinator)

// WithClock substitutes the time source, typically a fake clock in tests.
func WithClock(clock Clock) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// WithCacheTTL overrides CacheTTL. A zero or negative TTL disables the cache
// entirely: nothing is stored and nothing is served from it.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Coordinator) { c.cacheTTL = ttl }
}

// WithMinRequestInterval overrides MinRequestInterval.
func WithMinRequestInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.minInterval = d }
}

// WithMaxRetries overrides MaxRetries.
func WithMaxRetries(n int) Option {
	return func(c *Coordinator) { c.maxRetries = n }
}

// NewCoordinator builds a coordinator around the given collaborator.
func NewCoordinator(fetcher Fetcher, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:     fetcher,
		clock:       SystemClock(),
		log:         zerolog.Nop(),
		cacheTTL:    CacheTTL,
		minInterval: MinRequestInterval,
		maxRetries:  MaxRetries,
		cache:       make(map[string]*cacheEntry),
		requests:    make(map[string]*requestState),
		retries:     make(map[string]*retryState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns a quote for the ticker, going to the upstream provider only
// when the cache, in-flight, and spacing gates allow it. Classified failures
// come back as *model.QuoteError values; ctx cancellation abandons the wait
// but never the dispatch itself, whose result is still cached and classified
// for later callers.
func (c *Coordinator) Fetch(ctx context.Context, ticker string) (*model.Quote, error) {
	key := NormalizeTicker(ticker)
	if key == "" {
		return nil, model.NewQuoteError(ticker, model.ErrCodeInvalidTicker, "", "ticker symbol is required")
	}

	c.mu.Lock()
	now := c.clock.Now()

	if c.cacheTTL > 0 {
		if entry, ok := c.cache[key]; ok && now.Sub(entry.storedAt) < c.cacheTTL {
			c.hits++
			quote := entry.quote
			c.mu.Unlock()
			c.log.Debug().Str("ticker", key).Msg("cache hit")
			return quote, nil
		}
	}
	c.misses++

	if rs, ok := c.requests[key]; ok && rs.inflight != nil {
		call := rs.inflight
		c.mu.Unlock()
		c.log.Debug().Str("ticker", key).Msg("joining in-flight request")
		return c.await(ctx, call)
	}

	// Spacing gate: inside the minimum interval a stale cache entry is
	// served if one exists; otherwise the dispatch waits out the remainder.
	var wait time.Duration
	if rs, ok := c.requests[key]; ok && !rs.lastRequestAt.IsZero() {
		if elapsed := now.Sub(rs.lastRequestAt); elapsed < c.minInterval {
			if c.cacheTTL > 0 {
				if entry, ok := c.cache[key]; ok {
					quote := entry.quote
					c.mu.Unlock()
					c.log.Debug().Str("ticker", key).Msg("serving stale cache entry inside min interval")
					return quote, nil
				}
			}
			wait = c.minInterval - elapsed
		}
	}

	// The in-flight handle is registered before any suspension point (the
	// spacing wait included) so back-to-back callers collapse onto one
	// upstream call.
	call := &inflightCall{done: make(chan struct{})}
	rs := c.requests[key]
	if rs == nil {
		rs = &requestState{}
		c.requests[key] = rs
	}
	rs.inflight = call

	// A manual fetch supersedes any scheduled retry for the key.
	if st, ok := c.retries[key]; ok && st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	c.mu.Unlock()

	go c.dispatch(key, call, wait)

	return c.await(ctx, call)
}

func (c *Coordinator) await(ctx context.Context, call *inflightCall) (*model.Quote, error) {
	select {
	case <-call.done:
		return call.quote, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) dispatch(key string, call *inflightCall, wait time.Duration) {
	if wait > 0 {
		t := c.clock.NewTimer(wait)
		<-t.C()
	}

	c.mu.Lock()
	now := c.clock.Now()
	if rs, ok := c.requests[key]; ok && rs.inflight == call {
		rs.lastRequestAt = now
		c.lastRequest = &RequestInfo{Ticker: key, At: now}
	}
	c.mu.Unlock()

	c.log.Debug().Str("ticker", key).Msg("dispatching upstream fetch")
	quote, err := c.safeFetch(key)
	c.settle(key, call, quote, err)
}

// safeFetch converts a collaborator panic into an unknown-code error value so
// the in-flight handle is always cleared and the key never wedges.
func (c *Coordinator) safeFetch(key string) (quote *model.Quote, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = model.NewQuoteError(key, model.ErrCodeUnknown, "", fmt.Sprintf("fetch failed: %v", r))
		}
	}()
	return c.fetcher.FetchQuote(context.Background(), key)
}

// settle records the outcome of a dispatch and resolves every waiter. All
// classification bookkeeping happens under the lock before done is closed, so
// callers observe a consistent cache/retry state once they wake.
func (c *Coordinator) settle(key string, call *inflightCall, quote *model.Quote, err error) {
	c.mu.Lock()
	now := c.clock.Now()

	// Pointer identity guards against a ClearAll that raced the dispatch:
	// waiters still get their result, but a stale call writes no state.
	current := false
	if rs, ok := c.requests[key]; ok && rs.inflight == call {
		rs.inflight = nil
		current = true
	}

	if err == nil {
		call.quote = quote
		if current {
			if c.cacheTTL > 0 {
				c.cache[key] = &cacheEntry{quote: quote, storedAt: now}
			}
			c.clearRetryLocked(key)
			c.lastResponse = &ResponseInfo{Ticker: key, Outcome: "success", At: now}
		}
		c.mu.Unlock()
		close(call.done)
		c.log.Debug().Str("ticker", key).Msg("fetch succeeded")
		return
	}

	qe := classify(key, err)
	if current {
		if qe.IsRateLimited() {
			err = c.advanceRetryLocked(key, now, qe)
		} else {
			// Any non-rate-limit failure resets backoff bookkeeping.
			c.clearRetryLocked(key)
			err = qe
		}
		c.lastResponse = &ResponseInfo{Ticker: key, Outcome: string(quoteCode(err)), At: now}
	} else {
		err = qe
	}
	call.err = err
	c.mu.Unlock()
	close(call.done)
}

// classify coerces any collaborator failure into a *model.QuoteError; an
// unclassified error becomes code unknown.
func classify(key string, err error) *model.QuoteError {
	var qe *model.QuoteError
	if errors.As(err, &qe) {
		return qe
	}
	return model.NewQuoteError(key, model.ErrCodeUnknown, "", err.Error())
}

func quoteCode(err error) model.ErrorCode {
	var qe *model.QuoteError
	if errors.As(err, &qe) {
		return qe.Code
	}
	return model.ErrCodeUnknown
}

// advanceRetryLocked runs the retry state machine for one rate-limit
// classification. Caller holds c.mu.
func (c *Coordinator) advanceRetryLocked(key string, now time.Time, qe *model.QuoteError) error {
	st := c.retries[key]
	if st == nil {
		st = &retryState{}
		c.retries[key] = st
	}
	st.attemptCount++

	if st.attemptCount > c.maxRetries {
		c.clearRetryLocked(key)
		c.log.Warn().Str("ticker", key).Int("attempts", c.maxRetries).Msg("retries exhausted")
		exhausted := model.NewQuoteError(key, model.ErrCodeRetryExhausted, qe.Provider,
			fmt.Sprintf("rate limit persisted after %d retries; wait a minute before trying %s again", c.maxRetries, key))
		exhausted.RawResponse = qe.RawResponse
		return exhausted
	}

	st.nextRetryAt = now.Add(BackoffDelay(st.attemptCount))
	c.log.Warn().
		Str("ticker", key).
		Int("attempt", st.attemptCount).
		Time("nextRetryAt", st.nextRetryAt).
		Msg("rate limited")
	return qe
}

// clearRetryLocked drops retry state and cancels its timer. Caller holds c.mu.
func (c *Coordinator) clearRetryLocked(key string) {
	if st, ok := c.retries[key]; ok {
		if st.timer != nil {
			st.timer.Stop()
		}
		delete(c.retries, key)
	}
}

// ScheduleRetry arms one timer that fires a single fresh Fetch at the key's
// nextRetryAt and hands the outcome to onComplete. Re-scheduling replaces any
// pending timer for the key, never stacks; with no retry state it is a no-op.
// The coordinator never re-arms on its own: continuing the cycle after a
// further rate limit is the caller's explicit choice.
func (c *Coordinator) ScheduleRetry(ticker string, onComplete func(*model.Quote, error)) {
	key := NormalizeTicker(ticker)
	if key == "" || onComplete == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.retries[key]
	if !ok || st.nextRetryAt.IsZero() || st.attemptCount > c.maxRetries {
		return
	}

	if st.timer != nil {
		st.timer.Stop()
	}

	delay := st.nextRetryAt.Sub(c.clock.Now())
	if delay < 0 {
		delay = 0
	}
	c.log.Debug().Str("ticker", key).Dur("delay", delay).Msg("retry scheduled")
	st.timer = c.clock.AfterFunc(delay, func() {
		quote, err := c.Fetch(context.Background(), key)
		onComplete(quote, err)
	})
}

// RetryState returns the retry snapshot for a ticker, or nil when no retry
// cycle is active.
func (c *Coordinator) RetryState(ticker string) *RetrySnapshot {
	key := NormalizeTicker(ticker)

	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.retries[key]
	if !ok {
		return nil
	}
	return &RetrySnapshot{AttemptCount: st.attemptCount, NextRetryAt: st.nextRetryAt}
}

// Diagnostics projects current coordinator state. Ages, TTL remainders, and
// backoff remainders are computed against now at call time.
func (c *Coordinator) Diagnostics() DiagnosticsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	snap := DiagnosticsSnapshot{
		GeneratedAt: now,
		Cache: CacheStats{
			Hits:    c.hits,
			Misses:  c.misses,
			Entries: make([]CacheEntryInfo, 0, len(c.cache)),
		},
		Retry: make([]RetryInfo, 0, len(c.retries)),
	}
	if c.lastRequest != nil {
		lr := *c.lastRequest
		snap.LastRequest = &lr
	}
	if c.lastResponse != nil {
		lr := *c.lastResponse
		snap.LastResponse = &lr
	}

	cacheKeys := make([]string, 0, len(c.cache))
	for key := range c.cache {
		cacheKeys = append(cacheKeys, key)
	}
	sort.Strings(cacheKeys)
	for _, key := range cacheKeys {
		entry := c.cache[key]
		age := now.Sub(entry.storedAt)
		remaining := c.cacheTTL - age
		if remaining < 0 {
			remaining = 0
		}
		snap.Cache.Entries = append(snap.Cache.Entries, CacheEntryInfo{
			Ticker:              key,
			StoredAt:            entry.storedAt,
			AgeSeconds:          age.Seconds(),
			TTLRemainingSeconds: remaining.Seconds(),
		})
	}

	retryKeys := make([]string, 0, len(c.retries))
	for key := range c.retries {
		retryKeys = append(retryKeys, key)
	}
	sort.Strings(retryKeys)
	for _, key := range retryKeys {
		st := c.retries[key]
		remaining := st.nextRetryAt.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		snap.Retry = append(snap.Retry, RetryInfo{
			Ticker:                  key,
			AttemptCount:            st.attemptCount,
			NextRetryAt:             st.nextRetryAt,
			BackoffRemainingSeconds: remaining.Seconds(),
		})
	}

	return snap
}

// ClearAll cancels every pending retry timer and drops all cache, request,
// and retry state plus the diagnostics counters, leaving the coordinator as
// freshly constructed. Used on session end.
func (c *Coordinator) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, st := range c.retries {
		if st.timer != nil {
			st.timer.Stop()
		}
	}
	c.cache = make(map[string]*cacheEntry)
	c.requests = make(map[string]*requestState)
	c.retries = make(map[string]*retryState)
	c.hits = 0
	c.misses = 0
	c.lastRequest = nil
	c.lastResponse = nil
	c.log.Info().Msg("coordinator state cleared")
}
