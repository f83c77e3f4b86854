package model

import "time"

// TradeSide is the direction of an imported trade.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// TradeRecord is one row from a broker trade-history export.
type TradeRecord struct {
	ID         string    `json:"id"`
	Ticker     string    `json:"ticker"`
	Side       TradeSide `json:"side"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	TradedAt   time.Time `json:"tradedAt"`
	ImportedAt time.Time `json:"importedAt"`
}

// ImportError reports a rejected CSV line with its 1-based line number.
type ImportError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportSummary is the outcome of one CSV import request.
type ImportSummary struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors,omitempty"`
}
