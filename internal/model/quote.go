package model

import (
	"encoding/json"
	"time"
)

// ErrorCode classifies a failed quote fetch. The code is the single source of
// truth for retryability; IsRateLimited is derived from it and never stored.
type ErrorCode string

// Collaborator-produced codes. ErrCodeRetryExhausted is produced only by the
// request coordinator when the backoff state machine terminates.
const (
	ErrCodeRateLimit      ErrorCode = "rate_limit"
	ErrCodeInvalidTicker  ErrorCode = "invalid_ticker"
	ErrCodeNetworkError   ErrorCode = "network_error"
	ErrCodeTimeout        ErrorCode = "timeout"
	ErrCodeNoData         ErrorCode = "no_data"
	ErrCodeAPIError       ErrorCode = "api_error"
	ErrCodeConfigError    ErrorCode = "config_error"
	ErrCodeUnknown        ErrorCode = "unknown"
	ErrCodeRetryExhausted ErrorCode = "retry_exhausted"
)

// PricePoint is a single OHLCV bar from the provider's historical series.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Quote is a successful fetch result for one ticker.
type Quote struct {
	Ticker      string       `json:"ticker"`
	LatestPrice float64      `json:"latestPrice"`
	Timestamp   time.Time    `json:"timestamp"`
	IsRealtime  bool         `json:"isRealtime"`
	PricePoints []PricePoint `json:"pricePoints"`
	Provider    string       `json:"provider"`
}

// QuoteError is a classified fetch failure. It is returned as an error value,
// never panicked, so callers branch on Code via errors.As.
type QuoteError struct {
	Ticker      string
	Message     string
	Provider    string
	Code        ErrorCode
	RawResponse string
}

// NewQuoteError builds a classified error for a ticker.
func NewQuoteError(ticker string, code ErrorCode, provider, message string) *QuoteError {
	return &QuoteError{
		Ticker:   ticker,
		Message:  message,
		Provider: provider,
		Code:     code,
	}
}

func (e *QuoteError) Error() string {
	return e.Message
}

// IsRateLimited reports whether the error should drive the retry state
// machine. Derived from Code so the flag can never drift from the
// classification; a retry-exhausted error is deliberately not rate-limited.
func (e *QuoteError) IsRateLimited() bool {
	return e.Code == ErrCodeRateLimit
}

// MarshalJSON emits the wire shape consumed by the UI, including the derived
// isRateLimited flag.
func (e *QuoteError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Ticker        string    `json:"ticker"`
		Error         string    `json:"error"`
		Provider      string    `json:"provider"`
		ErrorCode     ErrorCode `json:"errorCode"`
		IsRateLimited bool      `json:"isRateLimited"`
		RawResponse   string    `json:"rawResponse,omitempty"`
	}{
		Ticker:        e.Ticker,
		Error:         e.Message,
		Provider:      e.Provider,
		ErrorCode:     e.Code,
		IsRateLimited: e.IsRateLimited(),
		RawResponse:   e.RawResponse,
	})
}
