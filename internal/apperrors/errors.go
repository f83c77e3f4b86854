package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAnalysisNotFound indicates that a trade setup with the given ID does not exist.
	ErrAnalysisNotFound = errors.New("analysis not found")

	// ErrWatchlistItemNotFound indicates that a watchlist entry with the given ID does not exist.
	ErrWatchlistItemNotFound = errors.New("watchlist item not found")

	// ErrSessionNotFound indicates that a session is unknown or already ended.
	ErrSessionNotFound = errors.New("session not found")

	ErrTradeRecordNotFound = errors.New("trade record not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrEmptyTicker indicates that a required ticker parameter is empty after normalization.
	ErrEmptyTicker = errors.New("ticker cannot be empty")

	// ErrInvalidTicker indicates that a ticker fails the symbol format check.
	ErrInvalidTicker = errors.New("invalid ticker symbol")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrSessionExpired indicates that a presented session token is past its expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidSessionToken indicates that a session token failed fernet verification.
	ErrInvalidSessionToken = errors.New("invalid session token")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	// Analysis operation errors
	ErrFailedToRetrieveAnalyses = errors.New("failed to retrieve analyses")
	ErrFailedToStoreAnalysis    = errors.New("failed to store analysis")
	ErrFailedToDeleteAnalysis   = errors.New("failed to delete analysis")
	ErrLedgerClosed             = errors.New("ledger writer is closed")

	// Watchlist operation errors
	ErrFailedToRetrieveWatchlist = errors.New("failed to retrieve watchlist")
	ErrFailedToStoreWatchlist    = errors.New("failed to store watchlist item")
	ErrFailedToDeleteWatchlist   = errors.New("failed to delete watchlist item")

	// Session operation errors
	ErrFailedToCreateSession = errors.New("failed to create session")
	ErrFailedToDeleteSession = errors.New("failed to delete session")

	// Developer operation errors
	ErrFailedToRetrieveLogs = errors.New("failed to retrieve logs")

	// Import operation errors
	ErrFailedToImportTrades = errors.New("failed to import trades")
	ErrInvalidCSVHeaders    = errors.New("invalid CSV headers")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state.
	ErrDataInconsistency = errors.New("data inconsistency detected")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)
