package model

import "time"

// TickerStatus is the UI-facing fetch lifecycle state for one ticker.
type TickerStatus string

const (
	StatusIdle     TickerStatus = "idle"
	StatusLoading  TickerStatus = "loading"
	StatusSuccess  TickerStatus = "success"
	StatusError    TickerStatus = "error"
	StatusCooldown TickerStatus = "cooldown"
)

// TickerViewState is the snapshot the UI renders for a ticker: the last
// outcome plus live countdown data. CooldownSeconds is computed from
// NextRetryAt at snapshot time, never from a fixed interval, so displayed
// delays follow the real 10s/30s/60s escalation.
type TickerViewState struct {
	Ticker          string       `json:"ticker"`
	Status          TickerStatus `json:"status"`
	Quote           *Quote       `json:"quote,omitempty"`
	Error           *QuoteError  `json:"error,omitempty"`
	AttemptCount    int          `json:"attemptCount,omitempty"`
	MaxRetries      int          `json:"maxRetries,omitempty"`
	NextRetryAt     *time.Time   `json:"nextRetryAt,omitempty"`
	CooldownSeconds float64      `json:"cooldownSeconds,omitempty"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}
