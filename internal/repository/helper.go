package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// ParseTime parses a scanned date column in "2006-01-02" or RFC3339 format.
// SQLite hands both back depending on how the value was bound.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse("2006-01-02", str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}

// nullableFloat converts an optional float into a bind value, mapping nil to NULL.
func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// floatPtr converts a scanned nullable column back into an optional float.
func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
