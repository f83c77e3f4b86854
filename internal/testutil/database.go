package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the goose migrations under internal/database.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Persisted trade-setup analyses
		CREATE TABLE trade_setup (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			ticker VARCHAR(10) NOT NULL,
			latest_price FLOAT NOT NULL,
			sma20 FLOAT,
			sma50 FLOAT,
			support FLOAT,
			resistance FLOAT,
			trend VARCHAR(10) NOT NULL,
			notes TEXT,
			provider VARCHAR(20) NOT NULL,
			analyzed_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Tracked tickers
		CREATE TABLE watchlist (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			ticker VARCHAR(10) NOT NULL UNIQUE,
			label VARCHAR(100),
			added_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- UI sessions
		CREATE TABLE session (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			created_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL
		);

		-- Queryable log sink
		CREATE TABLE request_log (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			level VARCHAR(10) NOT NULL,
			component VARCHAR(20),
			message TEXT NOT NULL,
			fields TEXT,
			request_id VARCHAR(64)
		);
		CREATE INDEX idx_request_log_timestamp ON request_log(timestamp);

		-- Imported broker trades
		CREATE TABLE trade_record (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			ticker VARCHAR(10) NOT NULL,
			side VARCHAR(4) NOT NULL,
			quantity FLOAT NOT NULL,
			price FLOAT NOT NULL,
			traded_at DATE NOT NULL,
			imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := db.Exec(schema)
	return err
}
