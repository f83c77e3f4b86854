package marketdata

import "time"

// RequestInfo describes the most recent upstream dispatch.
type RequestInfo struct {
	Ticker string    `json:"ticker"`
	At     time.Time `json:"at"`
}

// ResponseInfo describes the most recent settled outcome. Outcome is
// "success" or the error code of the classified failure.
type ResponseInfo struct {
	Ticker  string    `json:"ticker"`
	Outcome string    `json:"outcome"`
	At      time.Time `json:"at"`
}

// CacheEntryInfo is the live view of one cache entry. Age and TTL remaining
// are computed against the snapshot time; expired entries report zero
// remaining until superseded.
type CacheEntryInfo struct {
	Ticker              string    `json:"ticker"`
	StoredAt            time.Time `json:"storedAt"`
	AgeSeconds          float64   `json:"ageSeconds"`
	TTLRemainingSeconds float64   `json:"ttlRemainingSeconds"`
}

// CacheStats aggregates cache behavior since construction or the last
// ClearAll.
type CacheStats struct {
	Hits    uint64           `json:"hits"`
	Misses  uint64           `json:"misses"`
	Entries []CacheEntryInfo `json:"entries"`
}

// RetryInfo is the live view of one key's backoff state.
type RetryInfo struct {
	Ticker                  string    `json:"ticker"`
	AttemptCount            int       `json:"attemptCount"`
	NextRetryAt             time.Time `json:"nextRetryAt"`
	BackoffRemainingSeconds float64   `json:"backoffRemainingSeconds"`
}

// DiagnosticsSnapshot is a read-only projection of coordinator state at the
// moment of the call. Time-derived fields are recomputed on every call, never
// memoized; taking a snapshot mutates nothing.
type DiagnosticsSnapshot struct {
	GeneratedAt  time.Time     `json:"generatedAt"`
	LastRequest  *RequestInfo  `json:"lastRequest,omitempty"`
	LastResponse *ResponseInfo `json:"lastResponse,omitempty"`
	Cache        CacheStats    `json:"cache"`
	Retry        []RetryInfo   `json:"retry"`
}

// RetrySnapshot is the UI-facing view of one ticker's retry progress, enough
// to render "attempt 2 of 3, retrying in 14s".
type RetrySnapshot struct {
	AttemptCount int       `json:"attemptCount"`
	NextRetryAt  time.Time `json:"nextRetryAt"`
}
