package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
)

// NewQuote builds a plausible successful quote with a five-day OHLCV series.
// LatestPrice matches the close of the most recent bar.
func NewQuote(ticker string) *model.Quote {
	now := time.Now().UTC()
	points := make([]model.PricePoint, 0, 5)
	for i := 4; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Truncate(24 * time.Hour)
		base := 185.0 + float64(4-i)
		points = append(points, model.PricePoint{
			Date:   day,
			Open:   base,
			High:   base + 2.5,
			Low:    base - 1.5,
			Close:  base + 1.0,
			Volume: 40_000_000 + int64(i)*1_000_000,
		})
	}
	return &model.Quote{
		Ticker:      ticker,
		LatestPrice: points[len(points)-1].Close,
		Timestamp:   now,
		IsRealtime:  true,
		PricePoints: points,
		Provider:    "yahoo",
	}
}

// RateLimitError builds the classified throttle error the provider client
// produces on HTTP 429.
func RateLimitError(ticker string) *model.QuoteError {
	return model.NewQuoteError(ticker, model.ErrCodeRateLimit, "yahoo",
		"provider rate limit hit for "+ticker)
}

// NetworkError builds a classified transport failure.
func NetworkError(ticker string) *model.QuoteError {
	return model.NewQuoteError(ticker, model.ErrCodeNetworkError, "yahoo",
		"connection reset fetching "+ticker)
}

// WatchlistItemBuilder provides a fluent interface for creating watchlist
// rows.
//
// Example usage:
//
//	item := testutil.NewWatchlistItem().WithTicker("MSFT").Build(t, db)
type WatchlistItemBuilder struct {
	ID     string
	Ticker string
	Label  string
}

// NewWatchlistItem creates a builder with sensible defaults.
func NewWatchlistItem() *WatchlistItemBuilder {
	return &WatchlistItemBuilder{
		ID:     MakeID(),
		Ticker: "AAPL",
		Label:  "Apple",
	}
}

// WithID sets a custom ID.
func (b *WatchlistItemBuilder) WithID(id string) *WatchlistItemBuilder {
	b.ID = id
	return b
}

// WithTicker sets a custom ticker.
func (b *WatchlistItemBuilder) WithTicker(ticker string) *WatchlistItemBuilder {
	b.Ticker = ticker
	return b
}

// WithLabel sets a custom label.
func (b *WatchlistItemBuilder) WithLabel(label string) *WatchlistItemBuilder {
	b.Label = label
	return b
}

// Build inserts the watchlist row and returns it.
func (b *WatchlistItemBuilder) Build(t *testing.T, db *sql.DB) model.WatchlistItem {
	t.Helper()

	added := time.Now().UTC().Truncate(time.Second)
	query := `INSERT INTO watchlist (id, ticker, label, added_at) VALUES (?, ?, ?, ?)`
	if _, err := db.Exec(query, b.ID, b.Ticker, b.Label, added.Format(time.RFC3339)); err != nil {
		t.Fatalf("Failed to create test watchlist item: %v", err)
	}

	return model.WatchlistItem{
		ID:      b.ID,
		Ticker:  b.Ticker,
		Label:   b.Label,
		AddedAt: added,
	}
}

// TradeSetupBuilder provides a fluent interface for creating persisted
// analyses.
type TradeSetupBuilder struct {
	ID          string
	Ticker      string
	LatestPrice float64
	Trend       model.Trend
	Provider    string
	Notes       string
}

// NewTradeSetup creates a builder with sensible defaults.
func NewTradeSetup() *TradeSetupBuilder {
	return &TradeSetupBuilder{
		ID:          MakeID(),
		Ticker:      "AAPL",
		LatestPrice: 190.25,
		Trend:       model.TrendBullish,
		Provider:    "yahoo",
	}
}

// WithTicker sets a custom ticker.
func (b *TradeSetupBuilder) WithTicker(ticker string) *TradeSetupBuilder {
	b.Ticker = ticker
	return b
}

// WithTrend sets a custom trend label.
func (b *TradeSetupBuilder) WithTrend(trend model.Trend) *TradeSetupBuilder {
	b.Trend = trend
	return b
}

// WithNotes sets the free-form notes field.
func (b *TradeSetupBuilder) WithNotes(notes string) *TradeSetupBuilder {
	b.Notes = notes
	return b
}

// Build inserts the analysis row and returns it.
func (b *TradeSetupBuilder) Build(t *testing.T, db *sql.DB) model.TradeSetup {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	query := `
		INSERT INTO trade_setup (id, ticker, latest_price, trend, notes, provider, analyzed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	stamp := now.Format(time.RFC3339)
	if _, err := db.Exec(query, b.ID, b.Ticker, b.LatestPrice, string(b.Trend), b.Notes, b.Provider, stamp, stamp); err != nil {
		t.Fatalf("Failed to create test trade setup: %v", err)
	}

	return model.TradeSetup{
		ID:          b.ID,
		Ticker:      b.Ticker,
		LatestPrice: b.LatestPrice,
		Trend:       b.Trend,
		Notes:       b.Notes,
		Provider:    b.Provider,
		AnalyzedAt:  now,
		CreatedAt:   now,
	}
}
