package request

import (
	"testing"
	"time"
)

func TestParseLogFilters(t *testing.T) {
	t.Run("default values when no parameters provided", func(t *testing.T) {
		filters, err := ParseLogFilters("", "", "", "", "", "", "", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if filters.SortDir != "desc" {
			t.Errorf("Expected default SortDir 'desc', got '%s'", filters.SortDir)
		}

		if filters.PerPage != 50 {
			t.Errorf("Expected default PerPage 50, got %d", filters.PerPage)
		}

		if len(filters.Levels) != 0 {
			t.Errorf("Expected empty Levels, got %v", filters.Levels)
		}

		if len(filters.Components) != 0 {
			t.Errorf("Expected empty Components, got %v", filters.Components)
		}
	})

	t.Run("parses comma-separated levels", func(t *testing.T) {
		filters, err := ParseLogFilters("warn, ERROR", "", "", "", "", "", "", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if len(filters.Levels) != 2 {
			t.Fatalf("Expected 2 levels, got %d", len(filters.Levels))
		}

		if filters.Levels[0] != "warn" || filters.Levels[1] != "error" {
			t.Errorf("Expected [warn error], got %v", filters.Levels)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := ParseLogFilters("critical", "", "", "", "", "", "", "")
		if err == nil {
			t.Error("Expected error for unknown level, got nil")
		}
	})

	t.Run("parses comma-separated components", func(t *testing.T) {
		filters, err := ParseLogFilters("", "marketdata,scheduler", "", "", "", "", "", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if len(filters.Components) != 2 {
			t.Fatalf("Expected 2 components, got %d", len(filters.Components))
		}

		if filters.Components[0] != "marketdata" || filters.Components[1] != "scheduler" {
			t.Errorf("Expected [marketdata scheduler], got %v", filters.Components)
		}
	})

	t.Run("rejects unknown component", func(t *testing.T) {
		_, err := ParseLogFilters("", "portfolio", "", "", "", "", "", "")
		if err == nil {
			t.Error("Expected error for unknown component, got nil")
		}
	})

	t.Run("parses date-only and RFC3339 bounds", func(t *testing.T) {
		filters, err := ParseLogFilters("", "", "2025-03-10", "2025-03-11T09:30:00Z", "", "", "", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if filters.StartDate == nil || !filters.StartDate.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Unexpected StartDate: %v", filters.StartDate)
		}

		if filters.EndDate == nil || !filters.EndDate.Equal(time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC)) {
			t.Errorf("Unexpected EndDate: %v", filters.EndDate)
		}
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		if _, err := ParseLogFilters("", "", "10-03-2025", "", "", "", "", ""); err == nil {
			t.Error("Expected error for malformed startDate, got nil")
		}

		if _, err := ParseLogFilters("", "", "", "yesterday", "", "", "", ""); err == nil {
			t.Error("Expected error for malformed endDate, got nil")
		}
	})

	t.Run("validates sortDir", func(t *testing.T) {
		filters, err := ParseLogFilters("", "", "", "", "", "ASC", "", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if filters.SortDir != "asc" {
			t.Errorf("Expected SortDir 'asc', got '%s'", filters.SortDir)
		}

		if _, err := ParseLogFilters("", "", "", "", "", "sideways", "", ""); err == nil {
			t.Error("Expected error for invalid sortDir, got nil")
		}
	})

	t.Run("validates perPage bounds", func(t *testing.T) {
		filters, err := ParseLogFilters("", "", "", "", "", "", "", "25")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if filters.PerPage != 25 {
			t.Errorf("Expected PerPage 25, got %d", filters.PerPage)
		}

		for _, bad := range []string{"0", "101", "-5", "many"} {
			if _, err := ParseLogFilters("", "", "", "", "", "", "", bad); err == nil {
				t.Errorf("Expected error for perPage %q, got nil", bad)
			}
		}
	})

	t.Run("passes through message and cursor", func(t *testing.T) {
		filters, err := ParseLogFilters("", "", "", "", "rate limited", "", "2025|abc", "")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if filters.Message != "rate limited" {
			t.Errorf("Expected Message 'rate limited', got '%s'", filters.Message)
		}

		if filters.Cursor != "2025|abc" {
			t.Errorf("Expected Cursor '2025|abc', got '%s'", filters.Cursor)
		}
	})
}
