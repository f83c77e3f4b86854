package marketdata

import (
	"strings"
	"time"
)

// Tuning constants for the request orchestration layer. All are fixed for the
// process; coordinator options may override TTL, spacing, and retry count for
// tests only.
const (
	// CacheTTL is how long a successful quote stays servable from cache.
	CacheTTL = 60 * time.Second

	// MinRequestInterval bounds how often the upstream provider may be hit
	// for the same ticker, independent of caching.
	MinRequestInterval = 5 * time.Second

	// MaxRetries is the attempt-count circuit breaker for rate-limited keys.
	MaxRetries = 3

	// BaseRetryDelay * 3^(n-1), capped at MaxRetryDelay, gives the retry
	// waits 10s, 30s, 60s for attempts 1..3.
	BaseRetryDelay = 10 * time.Second
	MaxRetryDelay  = 60 * time.Second

	backoffMultiplier = 3
)

// NormalizeTicker canonicalizes a symbol for every state lookup: surrounding
// whitespace dropped, remainder upper-cased. Idempotent, so cache, spacing,
// and retry maps all key on the same form.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// BackoffDelay returns the wait before the given retry attempt (1-based).
// Monotonically non-decreasing and saturating at MaxRetryDelay; never zero or
// negative.
func BackoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := BaseRetryDelay
	for i := 1; i < attempt; i++ {
		delay *= backoffMultiplier
		if delay >= MaxRetryDelay {
			return MaxRetryDelay
		}
	}
	if delay > MaxRetryDelay {
		delay = MaxRetryDelay
	}
	return delay
}
