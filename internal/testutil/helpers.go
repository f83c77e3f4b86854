package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/trade-setup-analyzer/internal/ledger"
	"github.com/caffeinepub/trade-setup-analyzer/internal/marketdata"
	"github.com/caffeinepub/trade-setup-analyzer/internal/repository"
	"github.com/caffeinepub/trade-setup-analyzer/internal/service"
	"github.com/caffeinepub/trade-setup-analyzer/internal/tradeimport"
)

// NewTestCoordinator builds a request coordinator with a silent logger.
// Pass marketdata options (fake clock, TTL overrides) as needed per test.
func NewTestCoordinator(t *testing.T, fetcher marketdata.Fetcher, opts ...marketdata.Option) *marketdata.Coordinator {
	t.Helper()

	merged := append([]marketdata.Option{marketdata.WithLogger(zerolog.Nop())}, opts...)
	return marketdata.NewCoordinator(fetcher, merged...)
}

func NewTestQuoteService(t *testing.T, coord *marketdata.Coordinator, clock marketdata.Clock) *service.QuoteService {
	t.Helper()

	return service.NewQuoteService(coord, clock, zerolog.Nop())
}

func NewTestAnalysisService(t *testing.T, db *sql.DB, coord *marketdata.Coordinator, history service.HistoryFetcher) *service.AnalysisService {
	t.Helper()

	analysisRepo := repository.NewAnalysisRepository(db)
	writer := ledger.NewWriter(analysisRepo, zerolog.Nop())
	t.Cleanup(func() {
		if err := writer.Close(); err != nil {
			t.Errorf("closing ledger writer: %v", err)
		}
	})

	return service.NewAnalysisService(analysisRepo, writer, coord, history, zerolog.Nop())
}

func NewTestWatchlistService(t *testing.T, db *sql.DB, quotes *service.QuoteService) *service.WatchlistService {
	t.Helper()

	watchlistRepo := repository.NewWatchlistRepository(db)
	return service.NewWatchlistService(watchlistRepo, quotes, zerolog.Nop())
}

func NewTestSessionService(t *testing.T, db *sql.DB, ttl time.Duration) *service.SessionService {
	t.Helper()

	sessionRepo := repository.NewSessionRepository(db)
	return service.NewSessionService(sessionRepo, []*fernet.Key{MakeSessionKey(t)}, ttl, zerolog.Nop())
}

func NewTestLogService(t *testing.T, db *sql.DB) *service.LogService {
	t.Helper()

	logRepo := repository.NewLogRepository(db)
	return service.NewLogService(logRepo)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, zerolog.Nop())
}

func NewTestImporter(t *testing.T, db *sql.DB) *tradeimport.Importer {
	t.Helper()

	tradeRepo := repository.NewTradeRecordRepository(db)
	return tradeimport.NewImporter(tradeRepo, zerolog.Nop())
}

// NopLogger returns a logger that discards everything.
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// MakeSessionKey generates a fernet key for session token tests.
func MakeSessionKey(t *testing.T) *fernet.Key {
	t.Helper()

	var key fernet.Key
	require.NoError(t, key.Generate())
	return &key
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeTicker generates a unique ticker symbol from a base.
//
// Example usage:
//
//	ticker := testutil.MakeTicker("AAPL")
//	// Returns: "AAPL.Q7"
func MakeTicker(base string) string {
	if base == "" {
		base = "TST"
	}
	return base + "." + randomAlphanumeric(2)
}

// MakeLabel generates a unique watchlist label for testing.
func MakeLabel(base string) string {
	if base == "" {
		base = "Watch"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// Common test constants

var (
	// CommonTickers contains frequently used ticker symbols
	CommonTickers = []string{"AAPL", "MSFT", "NVDA", "AMZN", "GOOG", "META", "TSLA"}
)

// RandomTicker returns a random symbol from CommonTickers.
func RandomTicker() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return CommonTickers[rand.Intn(len(CommonTickers))]
}
