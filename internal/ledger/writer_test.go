package ledger_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
	"github.com/caffeinepub/trade-setup-analyzer/internal/ledger"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/repository"
	"github.com/caffeinepub/trade-setup-analyzer/internal/testutil"
)

func newSetup(ticker string) model.TradeSetup {
	return model.TradeSetup{
		Ticker:      ticker,
		LatestPrice: 101.5,
		Trend:       model.TrendBullish,
		Provider:    "yahoo",
		AnalyzedAt:  time.Now().UTC(),
	}
}

func TestWriterPersistsSubmittedSetups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAnalysisRepository(db)
	writer := ledger.NewWriter(repo, zerolog.Nop())

	for _, ticker := range []string{"AAPL", "MSFT", "NVDA"} {
		_, err := writer.Submit(newSetup(ticker))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	setups, err := repo.GetTradeSetups("", 0)
	require.NoError(t, err)
	require.Len(t, setups, 3)

	seen := map[string]bool{}
	for _, s := range setups {
		assert.False(t, seen[s.ID], "duplicate setup ID %s", s.ID)
		seen[s.ID] = true
		assert.False(t, s.CreatedAt.IsZero())
	}
}

func TestSubmitAssignsID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	writer := ledger.NewWriter(repository.NewAnalysisRepository(db), zerolog.Nop())
	t.Cleanup(func() { _ = writer.Close() })

	submitted, err := writer.Submit(newSetup("AAPL"))
	require.NoError(t, err)

	_, err = uuid.Parse(submitted.ID)
	assert.NoError(t, err)
	assert.False(t, submitted.CreatedAt.IsZero())
}

func TestCloseDrainsQueuedSetups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAnalysisRepository(db)
	writer := ledger.NewWriter(repo, zerolog.Nop())

	for i := 0; i < 50; i++ {
		_, err := writer.Submit(newSetup(testutil.RandomTicker()))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	setups, err := repo.GetTradeSetups("", 0)
	require.NoError(t, err)
	assert.Len(t, setups, 50)
}

func TestSubmitAfterCloseFails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	writer := ledger.NewWriter(repository.NewAnalysisRepository(db), zerolog.Nop())

	require.NoError(t, writer.Close())

	_, err := writer.Submit(newSetup("AAPL"))
	assert.ErrorIs(t, err, apperrors.ErrLedgerClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	writer := ledger.NewWriter(repository.NewAnalysisRepository(db), zerolog.Nop())

	require.NoError(t, writer.Close())
	require.NoError(t, writer.Close())
}
