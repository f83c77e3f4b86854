package model

import "time"

// Trend labels the price position relative to the long moving average.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendFlat    Trend = "flat"
)

// TradeSetup is one persisted analysis of a ticker: the quote snapshot the
// analysis ran against plus the derived indicator levels.
type TradeSetup struct {
	ID          string    `json:"id"`
	Ticker      string    `json:"ticker"`
	LatestPrice float64   `json:"latestPrice"`
	SMA20       *float64  `json:"sma20,omitempty"`
	SMA50       *float64  `json:"sma50,omitempty"`
	Support     *float64  `json:"support,omitempty"`
	Resistance  *float64  `json:"resistance,omitempty"`
	Trend       Trend     `json:"trend"`
	Notes       string    `json:"notes,omitempty"`
	Provider    string    `json:"provider"`
	AnalyzedAt  time.Time `json:"analyzedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}
