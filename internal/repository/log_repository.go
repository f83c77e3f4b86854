package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
)

// LogTimeLayout is the zero-padded timestamp format used in the request_log
// table. Fixed width keeps lexicographic comparison chronological, which the
// cursor conditions below rely on.
const LogTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const defaultLogPageSize = 50

// LogRepository provides data access methods for the request_log table.
// Rows are written by the database log sink and read through the developer
// endpoint.
type LogRepository struct {
	db *sql.DB
}

// NewLogRepository creates a new LogRepository with the provided database connection.
func NewLogRepository(db *sql.DB) *LogRepository {
	return &LogRepository{db: db}
}

// Insert persists one log entry.
func (r *LogRepository) Insert(entry model.Log) error {
	query := `
		INSERT INTO request_log (id, timestamp, level, component, message, fields, request_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		entry.ID,
		entry.Timestamp.UTC().Format(LogTimeLayout),
		entry.Level,
		entry.Component,
		entry.Message,
		entry.Fields,
		entry.RequestID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert request_log: %w", err)
	}

	return nil
}

// GetLogs retrieves a page of log entries matching the filters, using
// timestamp+id keyset pagination. One extra row is fetched to decide HasMore;
// NextCursor points at the last returned row.
func (r *LogRepository) GetLogs(filters model.LogFilters) (model.LogResponse, error) {
	query := `
		SELECT id, timestamp, level, component, message, fields, request_id
		FROM request_log
		WHERE 1=1
	`
	var args []any

	if len(filters.Levels) > 0 {
		query += " AND level IN (" + placeholders(len(filters.Levels)) + ")"
		for _, level := range filters.Levels {
			args = append(args, level)
		}
	}

	if len(filters.Components) > 0 {
		query += " AND component IN (" + placeholders(len(filters.Components)) + ")"
		for _, component := range filters.Components {
			args = append(args, component)
		}
	}

	if filters.StartDate != nil {
		query += " AND timestamp >= ?"
		args = append(args, filters.StartDate.UTC().Format(LogTimeLayout))
	}

	if filters.EndDate != nil {
		query += " AND timestamp <= ?"
		args = append(args, filters.EndDate.UTC().Format(LogTimeLayout))
	}

	if filters.Message != "" {
		query += " AND message LIKE ?"
		args = append(args, "%"+filters.Message+"%")
	}

	sortDir := strings.ToLower(filters.SortDir)
	if sortDir != "asc" {
		sortDir = "desc"
	}

	if filters.Cursor != "" {
		cursorTS, cursorID, err := splitCursor(filters.Cursor)
		if err != nil {
			return model.LogResponse{}, err
		}
		if sortDir == "asc" {
			query += " AND (timestamp > ? OR (timestamp = ? AND id > ?))"
		} else {
			query += " AND (timestamp < ? OR (timestamp = ? AND id < ?))"
		}
		args = append(args, cursorTS, cursorTS, cursorID)
	}

	if sortDir == "asc" {
		query += " ORDER BY timestamp ASC, id ASC"
	} else {
		query += " ORDER BY timestamp DESC, id DESC"
	}

	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = defaultLogPageSize
	}
	query += " LIMIT ?"
	args = append(args, perPage+1)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return model.LogResponse{}, fmt.Errorf("failed to query request_log table: %w", err)
	}
	defer rows.Close()

	logs := []model.Log{}
	timestamps := []string{}

	for rows.Next() {
		var entry model.Log
		var timestampStr string
		var component, fields, requestID sql.NullString

		err := rows.Scan(
			&entry.ID,
			&timestampStr,
			&entry.Level,
			&component,
			&entry.Message,
			&fields,
			&requestID,
		)
		if err != nil {
			return model.LogResponse{}, fmt.Errorf("failed to scan request_log table results: %w", err)
		}

		entry.Timestamp, err = ParseTime(timestampStr)
		if err != nil {
			return model.LogResponse{}, fmt.Errorf("failed to parse request_log timestamp: %w", err)
		}
		entry.Component = component.String
		entry.Fields = fields.String
		entry.RequestID = requestID.String

		logs = append(logs, entry)
		timestamps = append(timestamps, timestampStr)
	}

	if err = rows.Err(); err != nil {
		return model.LogResponse{}, fmt.Errorf("error iterating request_log table: %w", err)
	}

	response := model.LogResponse{Logs: logs}
	if len(logs) > perPage {
		response.Logs = logs[:perPage]
		response.HasMore = true
		last := perPage - 1
		response.NextCursor = joinCursor(timestamps[last], logs[last].ID)
	}
	response.Count = len(response.Logs)

	return response, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func joinCursor(timestamp, id string) string {
	return timestamp + "|" + id
}

func splitCursor(cursor string) (timestamp, id string, err error) {
	parts := strings.SplitN(cursor, "|", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid cursor format")
	}
	return parts[0], parts[1], nil
}
