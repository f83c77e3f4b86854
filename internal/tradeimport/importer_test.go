package tradeimport_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/testutil"
)

func TestImportCSVValidFile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	importer := testutil.NewTestImporter(t, db)

	csv := "date,symbol,side,quantity,price\n" +
		"2025-03-10,aapl,buy,10,189.50\n" +
		"2025-03-11,MSFT,sell,2.5,415.00\n" +
		"2025-03-12,BRK.B,Buy,1,402.10\n"

	summary, err := importer.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Imported)
	assert.Equal(t, 0, summary.Skipped)
	assert.Empty(t, summary.Errors)

	records, err := importer.GetTradeRecords("")
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest trade date first.
	assert.Equal(t, "BRK.B", records[0].Ticker)
	assert.Equal(t, "MSFT", records[1].Ticker)
	assert.Equal(t, "AAPL", records[2].Ticker)

	first := records[2]
	assert.Equal(t, model.TradeSideBuy, first.Side)
	assert.Equal(t, 10.0, first.Quantity)
	assert.Equal(t, 189.50, first.Price)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), first.TradedAt)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.ImportedAt.IsZero())
}

func TestImportCSVReportsBadRowsWithLineNumbers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	importer := testutil.NewTestImporter(t, db)

	csv := "date,symbol,side,quantity,price\n" +
		"2025-03-10,AAPL,buy,10,189.50\n" +
		"10-03-2025,MSFT,buy,5,415.00\n" +
		"2025-03-10,NVDA,hold,5,120.00\n" +
		"2025-03-10,AMD,buy,-3,160.00\n" +
		"2025-03-10,not a ticker,buy,1,5.00\n" +
		"2025-03-10,TSLA,sell,2\n" +
		"2025-03-11,GOOG,sell,4,170.25\n"

	summary, err := importer.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 0, summary.Skipped)
	require.Len(t, summary.Errors, 5)

	lines := make([]int, 0, len(summary.Errors))
	for _, importErr := range summary.Errors {
		lines = append(lines, importErr.Line)
	}
	assert.Equal(t, []int{3, 4, 5, 6, 7}, lines)

	assert.Contains(t, summary.Errors[0].Message, "date")
	assert.Contains(t, summary.Errors[1].Message, "side")
	assert.Contains(t, summary.Errors[2].Message, "quantity")
	assert.Contains(t, summary.Errors[3].Message, "symbol")

	records, err := importer.GetTradeRecords("")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestImportCSVSkipsDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	importer := testutil.NewTestImporter(t, db)

	csv := "date,symbol,side,quantity,price\n" +
		"2025-03-10,AAPL,buy,10,189.50\n" +
		"2025-03-10,AAPL,buy,10,189.50\n"

	summary, err := importer.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)

	// Re-uploading the same export imports nothing new.
	summary, err = importer.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 2, summary.Skipped)

	records, err := importer.GetTradeRecords("AAPL")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestImportCSVAcceptsReorderedHeaders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	importer := testutil.NewTestImporter(t, db)

	csv := "Symbol,Price,QUANTITY,date,side,broker\n" +
		"AAPL,189.50,10,2025-03-10,buy,ibkr\n"

	summary, err := importer.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Empty(t, summary.Errors)

	records, err := importer.GetTradeRecords("AAPL")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 189.50, records[0].Price)
	assert.Equal(t, 10.0, records[0].Quantity)
}

func TestImportCSVRejectsMissingHeaders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	importer := testutil.NewTestImporter(t, db)

	_, err := importer.ImportCSV(context.Background(), strings.NewReader("date,symbol,price\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCSVHeaders)
	assert.Contains(t, err.Error(), "side")
	assert.Contains(t, err.Error(), "quantity")

	_, err = importer.ImportCSV(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, apperrors.ErrInvalidCSVHeaders)
}

func TestDeleteTradeRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	importer := testutil.NewTestImporter(t, db)

	csv := "date,symbol,side,quantity,price\n" +
		"2025-03-10,AAPL,buy,10,189.50\n"

	_, err := importer.ImportCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	records, err := importer.GetTradeRecords("")
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NoError(t, importer.DeleteTradeRecord(records[0].ID))

	err = importer.DeleteTradeRecord(records[0].ID)
	assert.ErrorIs(t, err, apperrors.ErrTradeRecordNotFound)

	records, err = importer.GetTradeRecords("")
	require.NoError(t, err)
	assert.Empty(t, records)
}
