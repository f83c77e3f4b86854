package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
)

// WatchlistRepository provides data access methods for the watchlist table.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a new WatchlistRepository with the provided database connection.
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Create persists a watchlist item.
// Returns ErrDuplicateEntry when the ticker is already tracked.
func (r *WatchlistRepository) Create(item model.WatchlistItem) error {
	var existing string
	err := r.db.QueryRow(`SELECT id FROM watchlist WHERE ticker = ?`, item.Ticker).Scan(&existing)
	if err == nil {
		return apperrors.ErrDuplicateEntry
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check watchlist for duplicate: %w", err)
	}

	query := `
		INSERT INTO watchlist (id, ticker, label, added_at)
		VALUES (?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		item.ID,
		item.Ticker,
		item.Label,
		item.AddedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert watchlist item: %w", err)
	}

	return nil
}

// GetWatchlist retrieves all tracked tickers ordered by symbol.
// Returns an empty slice when nothing is tracked.
func (r *WatchlistRepository) GetWatchlist() ([]model.WatchlistItem, error) {
	query := `
		SELECT id, ticker, label, added_at
		FROM watchlist
		ORDER BY ticker
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist table: %w", err)
	}
	defer rows.Close()

	items := []model.WatchlistItem{}

	for rows.Next() {
		var item model.WatchlistItem
		var addedAtStr string

		err := rows.Scan(
			&item.ID,
			&item.Ticker,
			&item.Label,
			&addedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist table results: %w", err)
		}

		item.AddedAt, err = ParseTime(addedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse watchlist added_at: %w", err)
		}

		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist table: %w", err)
	}

	return items, nil
}

// GetWatchlistItemOnID retrieves a single watchlist item by its ID.
// Returns ErrWatchlistItemNotFound if no row with the given ID exists.
func (r *WatchlistRepository) GetWatchlistItemOnID(id string) (model.WatchlistItem, error) {
	if id == "" {
		return model.WatchlistItem{}, apperrors.ErrEmptyID
	}

	query := `
		SELECT id, ticker, label, added_at
		FROM watchlist
		WHERE id = ?
	`

	var item model.WatchlistItem
	var addedAtStr string

	err := r.db.QueryRow(query, id).Scan(
		&item.ID,
		&item.Ticker,
		&item.Label,
		&addedAtStr,
	)
	if err == sql.ErrNoRows {
		return model.WatchlistItem{}, apperrors.ErrWatchlistItemNotFound
	}
	if err != nil {
		return model.WatchlistItem{}, fmt.Errorf("failed to query watchlist item: %w", err)
	}

	item.AddedAt, err = ParseTime(addedAtStr)
	if err != nil {
		return model.WatchlistItem{}, fmt.Errorf("failed to parse watchlist added_at: %w", err)
	}

	return item, nil
}

// DeleteWatchlistItem removes a watchlist item by its ID.
// Returns ErrWatchlistItemNotFound if no row with the given ID exists.
func (r *WatchlistRepository) DeleteWatchlistItem(id string) error {
	query := `DELETE FROM watchlist WHERE id = ?`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.ErrWatchlistItemNotFound
	}

	return nil
}
