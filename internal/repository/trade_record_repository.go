package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
)

// TradeRecordRepository provides data access methods for the trade_record
// table. Imports run inside a transaction, so the repository can be scoped
// to one via WithTx.
type TradeRecordRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTradeRecordRepository creates a new TradeRecordRepository with the provided database connection.
func NewTradeRecordRepository(db *sql.DB) *TradeRecordRepository {
	return &TradeRecordRepository{db: db}
}

// WithTx returns a new TradeRecordRepository scoped to the provided transaction.
func (r *TradeRecordRepository) WithTx(tx *sql.Tx) *TradeRecordRepository {
	return &TradeRecordRepository{
		db: r.db,
		tx: tx,
	}
}

// DB exposes the underlying connection for starting import transactions.
func (r *TradeRecordRepository) DB() *sql.DB {
	return r.db
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *TradeRecordRepository) getQuerier() interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Create persists one imported trade.
func (r *TradeRecordRepository) Create(ctx context.Context, record model.TradeRecord) error {
	query := `
		INSERT INTO trade_record (id, ticker, side, quantity, price, traded_at, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		record.ID,
		record.Ticker,
		string(record.Side),
		record.Quantity,
		record.Price,
		record.TradedAt.UTC().Format("2006-01-02"),
		record.ImportedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trade_record: %w", err)
	}

	return nil
}

// Exists reports whether an identical trade is already stored. Imports use
// this to skip rows repeated across export files.
func (r *TradeRecordRepository) Exists(ctx context.Context, record model.TradeRecord) (bool, error) {
	query := `
		SELECT 1
		FROM trade_record
		WHERE ticker = ? AND side = ? AND quantity = ? AND price = ? AND traded_at = ?
		LIMIT 1
	`

	var one int
	err := r.getQuerier().QueryRowContext(ctx, query,
		record.Ticker,
		string(record.Side),
		record.Quantity,
		record.Price,
		record.TradedAt.UTC().Format("2006-01-02"),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query trade_record for duplicate: %w", err)
	}

	return true, nil
}

// GetTradeRecords retrieves imported trades, newest trade date first.
// An empty ticker returns trades for all tickers.
func (r *TradeRecordRepository) GetTradeRecords(ticker string) ([]model.TradeRecord, error) {
	query := `
		SELECT id, ticker, side, quantity, price, traded_at, imported_at
		FROM trade_record
		WHERE 1=1
	`
	var args []any

	if ticker != "" {
		query += " AND ticker = ?"
		args = append(args, ticker)
	}

	query += " ORDER BY traded_at DESC, id"

	rows, err := r.getQuerier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade_record table: %w", err)
	}
	defer rows.Close()

	records := []model.TradeRecord{}

	for rows.Next() {
		var record model.TradeRecord
		var side, tradedAtStr, importedAtStr string

		err := rows.Scan(
			&record.ID,
			&record.Ticker,
			&side,
			&record.Quantity,
			&record.Price,
			&tradedAtStr,
			&importedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade_record table results: %w", err)
		}

		record.Side = model.TradeSide(side)
		record.TradedAt, err = ParseTime(tradedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse trade_record traded_at: %w", err)
		}
		record.ImportedAt, err = ParseTime(importedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse trade_record imported_at: %w", err)
		}

		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade_record table: %w", err)
	}

	return records, nil
}

// DeleteTradeRecord removes an imported trade by its ID.
// Returns ErrTradeRecordNotFound if no row with the given ID exists.
func (r *TradeRecordRepository) DeleteTradeRecord(id string) error {
	query := `DELETE FROM trade_record WHERE id = ?`

	result, err := r.getQuerier().Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade_record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.ErrTradeRecordNotFound
	}

	return nil
}
