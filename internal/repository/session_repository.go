package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
)

// SessionRepository provides data access methods for the session table.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the provided database connection.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a session row.
func (r *SessionRepository) Create(session model.Session) error {
	query := `
		INSERT INTO session (id, created_at, expires_at)
		VALUES (?, ?, ?)
	`

	_, err := r.db.Exec(query,
		session.ID,
		session.CreatedAt.UTC().Format(time.RFC3339),
		session.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// GetSessionOnID retrieves a session by its ID.
// Returns ErrSessionNotFound if no row with the given ID exists.
func (r *SessionRepository) GetSessionOnID(id string) (model.Session, error) {
	if id == "" {
		return model.Session{}, apperrors.ErrEmptyID
	}

	query := `
		SELECT id, created_at, expires_at
		FROM session
		WHERE id = ?
	`

	var session model.Session
	var createdAtStr, expiresAtStr string

	err := r.db.QueryRow(query, id).Scan(
		&session.ID,
		&createdAtStr,
		&expiresAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Session{}, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to query session: %w", err)
	}

	session.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to parse session created_at: %w", err)
	}
	session.ExpiresAt, err = ParseTime(expiresAtStr)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to parse session expires_at: %w", err)
	}

	return session, nil
}

// DeleteSession removes a session by its ID.
// Returns ErrSessionNotFound if no row with the given ID exists.
func (r *SessionRepository) DeleteSession(id string) error {
	query := `DELETE FROM session WHERE id = ?`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.ErrSessionNotFound
	}

	return nil
}

// DeleteExpiredSessions removes every session that expired at or before the
// given time. Returns the number of rows removed.
func (r *SessionRepository) DeleteExpiredSessions(now time.Time) (int64, error) {
	query := `DELETE FROM session WHERE expires_at <= ?`

	result, err := r.db.Exec(query, now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
