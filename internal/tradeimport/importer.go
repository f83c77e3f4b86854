// Package tradeimport parses broker trade-history CSV exports into trade
// records. Columns are matched by header name, rows are validated one by
// one, and previously seen trades are skipped, so re-uploading an export is
// harmless.
package tradeimport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
	"github.com/caffeinepub/trade-setup-analyzer/internal/marketdata"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/repository"
	"github.com/caffeinepub/trade-setup-analyzer/internal/validation"
)

// requiredColumns are the header names an export must carry, in any order
// and any casing. Extra columns are ignored.
var requiredColumns = []string{"date", "symbol", "side", "quantity", "price"}

// Importer turns uploaded CSV exports into persisted trade records.
type Importer struct {
	tradeRepo *repository.TradeRecordRepository
	log       zerolog.Logger
}

// NewImporter creates a new Importer with the provided repository dependency.
func NewImporter(tradeRepo *repository.TradeRecordRepository, log zerolog.Logger) *Importer {
	return &Importer{
		tradeRepo: tradeRepo,
		log:       log,
	}
}

// ImportCSV reads one export and persists every valid, previously unseen
// row inside a single transaction. Invalid rows are reported per line
// number (the header is line 1) without aborting the rest; only header or
// database failures fail the import as a whole.
func (i *Importer) ImportCSV(ctx context.Context, r io.Reader) (model.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return model.ImportSummary{}, fmt.Errorf("%w: empty file", apperrors.ErrInvalidCSVHeaders)
	}
	if err != nil {
		return model.ImportSummary{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns, err := mapHeader(header)
	if err != nil {
		return model.ImportSummary{}, err
	}

	tx, err := i.tradeRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return model.ImportSummary{}, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	txRepo := i.tradeRepo.WithTx(tx)
	importedAt := time.Now().UTC().Truncate(time.Second)
	summary := model.ImportSummary{}

	line := 1
	for {
		line++
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			summary.Errors = append(summary.Errors, model.ImportError{Line: line, Message: err.Error()})
			continue
		}

		record, err := buildRecord(fields, columns)
		if err != nil {
			summary.Errors = append(summary.Errors, model.ImportError{Line: line, Message: err.Error()})
			continue
		}

		duplicate, err := txRepo.Exists(ctx, record)
		if err != nil {
			return model.ImportSummary{}, err
		}
		if duplicate {
			summary.Skipped++
			continue
		}

		record.ID = uuid.New().String()
		record.ImportedAt = importedAt
		if err := txRepo.Create(ctx, record); err != nil {
			return model.ImportSummary{}, err
		}
		summary.Imported++
	}

	if err := tx.Commit(); err != nil {
		return model.ImportSummary{}, fmt.Errorf("failed to commit import transaction: %w", err)
	}

	i.log.Info().
		Int("imported", summary.Imported).
		Int("skipped", summary.Skipped).
		Int("rejected", len(summary.Errors)).
		Msg("trade import complete")

	return summary, nil
}

// GetTradeRecords retrieves imported trades, newest trade date first.
// An empty ticker returns trades for all tickers.
func (i *Importer) GetTradeRecords(ticker string) ([]model.TradeRecord, error) {
	return i.tradeRepo.GetTradeRecords(marketdata.NormalizeTicker(ticker))
}

// DeleteTradeRecord removes an imported trade by its ID.
func (i *Importer) DeleteTradeRecord(id string) error {
	return i.tradeRepo.DeleteTradeRecord(id)
}

// mapHeader resolves column positions by lower-cased header name.
func mapHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", apperrors.ErrInvalidCSVHeaders, strings.Join(missing, ", "))
	}

	return columns, nil
}

// buildRecord validates one data row into a trade record. The returned
// error is user-facing and names the offending column.
func buildRecord(fields []string, columns map[string]int) (model.TradeRecord, error) {
	get := func(name string) string {
		idx := columns[name]
		if idx >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[idx])
	}

	ticker := marketdata.NormalizeTicker(get("symbol"))
	if err := validation.ValidateTicker(ticker); err != nil {
		return model.TradeRecord{}, fmt.Errorf("symbol: %v", err)
	}

	side := model.TradeSide(strings.ToLower(get("side")))
	if side != model.TradeSideBuy && side != model.TradeSideSell {
		return model.TradeRecord{}, fmt.Errorf("side must be buy or sell, got %q", get("side"))
	}

	quantity, err := strconv.ParseFloat(get("quantity"), 64)
	if err != nil || quantity <= 0 {
		return model.TradeRecord{}, fmt.Errorf("quantity must be a positive number, got %q", get("quantity"))
	}

	price, err := strconv.ParseFloat(get("price"), 64)
	if err != nil || price <= 0 {
		return model.TradeRecord{}, fmt.Errorf("price must be a positive number, got %q", get("price"))
	}

	tradedAt, err := time.Parse("2006-01-02", get("date"))
	if err != nil {
		return model.TradeRecord{}, fmt.Errorf("date must be YYYY-MM-DD, got %q", get("date"))
	}

	return model.TradeRecord{
		Ticker:   ticker,
		Side:     side,
		Quantity: quantity,
		Price:    price,
		TradedAt: tradedAt,
	}, nil
}
