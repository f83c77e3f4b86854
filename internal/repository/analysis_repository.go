package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
)

// AnalysisRepository provides data access methods for the trade_setup table.
// Rows are written by the ledger writer and read by the analysis service.
type AnalysisRepository struct {
	db *sql.DB
}

// NewAnalysisRepository creates a new AnalysisRepository with the provided database connection.
func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Create persists one trade setup row.
func (r *AnalysisRepository) Create(setup model.TradeSetup) error {
	query := `
		INSERT INTO trade_setup
			(id, ticker, latest_price, sma20, sma50, support, resistance, trend, notes, provider, analyzed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		setup.ID,
		setup.Ticker,
		setup.LatestPrice,
		nullableFloat(setup.SMA20),
		nullableFloat(setup.SMA50),
		nullableFloat(setup.Support),
		nullableFloat(setup.Resistance),
		string(setup.Trend),
		setup.Notes,
		setup.Provider,
		setup.AnalyzedAt.UTC().Format(time.RFC3339),
		setup.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade_setup: %w", err)
	}

	return nil
}

// GetTradeSetups retrieves persisted analyses, newest first. An empty ticker
// returns setups for all tickers; limit <= 0 returns everything.
func (r *AnalysisRepository) GetTradeSetups(ticker string, limit int) ([]model.TradeSetup, error) {
	query := `
		SELECT id, ticker, latest_price, sma20, sma50, support, resistance, trend, notes, provider, analyzed_at, created_at
		FROM trade_setup
		WHERE 1=1
	`
	var args []any

	if ticker != "" {
		query += " AND ticker = ?"
		args = append(args, ticker)
	}

	query += " ORDER BY created_at DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade_setup table: %w", err)
	}
	defer rows.Close()

	setups := []model.TradeSetup{}

	for rows.Next() {
		setup, err := scanTradeSetup(rows)
		if err != nil {
			return nil, err
		}
		setups = append(setups, setup)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade_setup table: %w", err)
	}

	return setups, nil
}

// GetTradeSetupOnID retrieves a single trade setup by its ID.
// Returns ErrAnalysisNotFound if no row with the given ID exists.
func (r *AnalysisRepository) GetTradeSetupOnID(id string) (model.TradeSetup, error) {
	if id == "" {
		return model.TradeSetup{}, apperrors.ErrEmptyID
	}

	query := `
		SELECT id, ticker, latest_price, sma20, sma50, support, resistance, trend, notes, provider, analyzed_at, created_at
		FROM trade_setup
		WHERE id = ?
	`

	row := r.db.QueryRow(query, id)
	setup, err := scanTradeSetupRow(row)
	if err == sql.ErrNoRows {
		return model.TradeSetup{}, apperrors.ErrAnalysisNotFound
	}
	if err != nil {
		return model.TradeSetup{}, err
	}

	return setup, nil
}

// DeleteTradeSetup removes a trade setup by its ID.
// Returns ErrAnalysisNotFound if no row with the given ID exists.
func (r *AnalysisRepository) DeleteTradeSetup(id string) error {
	query := `DELETE FROM trade_setup WHERE id = ?`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade_setup: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.ErrAnalysisNotFound
	}

	return nil
}

func scanTradeSetup(rows *sql.Rows) (model.TradeSetup, error) {
	var setup model.TradeSetup
	var sma20, sma50, support, resistance sql.NullFloat64
	var trend, analyzedAtStr, createdAtStr string

	err := rows.Scan(
		&setup.ID,
		&setup.Ticker,
		&setup.LatestPrice,
		&sma20,
		&sma50,
		&support,
		&resistance,
		&trend,
		&setup.Notes,
		&setup.Provider,
		&analyzedAtStr,
		&createdAtStr,
	)
	if err != nil {
		return model.TradeSetup{}, fmt.Errorf("failed to scan trade_setup table results: %w", err)
	}

	return buildTradeSetup(setup, sma20, sma50, support, resistance, trend, analyzedAtStr, createdAtStr)
}

func scanTradeSetupRow(row *sql.Row) (model.TradeSetup, error) {
	var setup model.TradeSetup
	var sma20, sma50, support, resistance sql.NullFloat64
	var trend, analyzedAtStr, createdAtStr string

	err := row.Scan(
		&setup.ID,
		&setup.Ticker,
		&setup.LatestPrice,
		&sma20,
		&sma50,
		&support,
		&resistance,
		&trend,
		&setup.Notes,
		&setup.Provider,
		&analyzedAtStr,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.TradeSetup{}, err
	}
	if err != nil {
		return model.TradeSetup{}, fmt.Errorf("failed to scan trade_setup row: %w", err)
	}

	return buildTradeSetup(setup, sma20, sma50, support, resistance, trend, analyzedAtStr, createdAtStr)
}

func buildTradeSetup(setup model.TradeSetup, sma20, sma50, support, resistance sql.NullFloat64, trend, analyzedAtStr, createdAtStr string) (model.TradeSetup, error) {
	setup.SMA20 = floatPtr(sma20)
	setup.SMA50 = floatPtr(sma50)
	setup.Support = floatPtr(support)
	setup.Resistance = floatPtr(resistance)
	setup.Trend = model.Trend(trend)

	var err error
	setup.AnalyzedAt, err = ParseTime(analyzedAtStr)
	if err != nil {
		return model.TradeSetup{}, fmt.Errorf("failed to parse trade_setup analyzed_at: %w", err)
	}
	setup.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.TradeSetup{}, fmt.Errorf("failed to parse trade_setup created_at: %w", err)
	}

	return setup, nil
}
