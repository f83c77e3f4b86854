package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
)

// StubFetcher is a scripted marketdata.Fetcher for coordinator and service
// tests. Queued outcomes are consumed in order; once the queue is empty the
// default outcome repeats. When Gate is set, FetchQuote records the call and
// then blocks until the channel is closed, so a test can hold a dispatch in
// flight.
//
// Example usage:
//
//	fetcher := testutil.NewStubFetcher().
//	    QueueError(testutil.RateLimitError("TSLA")).
//	    QueueQuote(testutil.NewQuote("TSLA"))
type StubFetcher struct {
	Gate chan struct{}
	Now  func() time.Time

	mu    sync.Mutex
	queue []stubOutcome
	def   stubOutcome
	calls []StubCall
}

type stubOutcome struct {
	quote *model.Quote
	err   error
}

// StubCall records one upstream dispatch. At is zero unless Now is set.
type StubCall struct {
	Ticker string
	At     time.Time
}

// NewStubFetcher creates a stub whose default outcome is a fresh quote for
// whichever ticker is requested.
func NewStubFetcher() *StubFetcher {
	return &StubFetcher{}
}

// WithQuote makes every unscripted call succeed with q.
func (f *StubFetcher) WithQuote(q *model.Quote) *StubFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.def = stubOutcome{quote: q}
	return f
}

// WithError makes every unscripted call fail with err.
func (f *StubFetcher) WithError(err error) *StubFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.def = stubOutcome{err: err}
	return f
}

// QueueQuote appends a one-shot successful outcome.
func (f *StubFetcher) QueueQuote(q *model.Quote) *StubFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, stubOutcome{quote: q})
	return f
}

// QueueError appends a one-shot failed outcome.
func (f *StubFetcher) QueueError(err error) *StubFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, stubOutcome{err: err})
	return f
}

// FetchQuote implements marketdata.Fetcher.
func (f *StubFetcher) FetchQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	f.mu.Lock()
	var at time.Time
	if f.Now != nil {
		at = f.Now()
	}
	f.calls = append(f.calls, StubCall{Ticker: ticker, At: at})

	out := f.def
	if len(f.queue) > 0 {
		out = f.queue[0]
		f.queue = f.queue[1:]
	}
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if out.err != nil {
		return nil, out.err
	}
	if out.quote != nil {
		return out.quote, nil
	}
	return NewQuote(ticker), nil
}

// CallCount returns how many dispatches reached the stub.
func (f *StubFetcher) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Calls returns a copy of the recorded dispatches.
func (f *StubFetcher) Calls() []StubCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]StubCall, len(f.calls))
	copy(out, f.calls)
	return out
}
