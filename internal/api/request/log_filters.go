package request

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
)

// ParseLogFilters extracts and validates log filters from query parameters.
// Converts raw query string parameters into a validated model.LogFilters struct.
//
// Parameters are expected as comma-separated strings (for levels and components)
// or single values (for other fields). All parameters are optional.
//
// Validation rules:
//   - levels: Must be valid log levels (debug, info, warn, error)
//   - components: Must be valid components (http, marketdata, scheduler, etc.)
//   - startDate/endDate: Must be valid date/datetime strings (YYYY-MM-DD or RFC3339)
//   - sortDir: Must be "asc" or "desc" (defaults to "desc")
//   - perPage: Must be between 1 and 100 (defaults to 50)
//
// Returns an error if any parameter fails validation.
func ParseLogFilters(
	levelsParam, componentsParam, startDateParam, endDateParam,
	messageParam, sortDirParam, cursorParam, perPageParam string,
) (model.LogFilters, error) {
	filters := model.LogFilters{
		Cursor:  cursorParam,
		Message: messageParam,
	}

	if levelsParam != "" {
		for _, level := range strings.Split(levelsParam, ",") {
			level = strings.TrimSpace(strings.ToLower(level))
			if !model.ValidLogLevels[model.LogLevel(level)] {
				return model.LogFilters{}, fmt.Errorf("invalid log level: %s", level)
			}
			filters.Levels = append(filters.Levels, level)
		}
	}

	if componentsParam != "" {
		for _, component := range strings.Split(componentsParam, ",") {
			component = strings.TrimSpace(strings.ToLower(component))
			if !model.ValidLogComponents[model.LogComponent(component)] {
				return model.LogFilters{}, fmt.Errorf("invalid component: %s", component)
			}
			filters.Components = append(filters.Components, component)
		}
	}

	if startDateParam != "" {
		startTime, err := parseFilterTime(startDateParam)
		if err != nil {
			return model.LogFilters{}, fmt.Errorf("invalid startDate format: %w", err)
		}
		filters.StartDate = &startTime
	}

	if endDateParam != "" {
		endTime, err := parseFilterTime(endDateParam)
		if err != nil {
			return model.LogFilters{}, fmt.Errorf("invalid endDate format: %w", err)
		}
		filters.EndDate = &endTime
	}

	if sortDirParam != "" {
		sortDir := strings.ToLower(sortDirParam)
		if sortDir != "asc" && sortDir != "desc" {
			return model.LogFilters{}, fmt.Errorf("invalid sortDir: must be 'asc' or 'desc'")
		}
		filters.SortDir = sortDir
	} else {
		filters.SortDir = "desc"
	}

	if perPageParam != "" {
		perPage, err := strconv.Atoi(perPageParam)
		if err != nil {
			return model.LogFilters{}, fmt.Errorf("invalid perPage: must be a number")
		}
		if perPage < 1 || perPage > 100 {
			return model.LogFilters{}, fmt.Errorf("invalid perPage: must be between 1 and 100")
		}
		filters.PerPage = perPage
	} else {
		filters.PerPage = 50
	}

	return filters, nil
}

// parseFilterTime parses date strings for log filter parameters.
// Accepts YYYY-MM-DD, RFC3339, and RFC3339 with milliseconds formats.
func parseFilterTime(str string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05.000Z07:00"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date or datetime", str)
}
