package model

import "time"

// LogLevel mirrors the zerolog level names that reach the sink.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ValidLogLevels is the set accepted by the log filter parser.
var ValidLogLevels = map[LogLevel]bool{
	LogLevelDebug: true,
	LogLevelInfo:  true,
	LogLevelWarn:  true,
	LogLevelError: true,
}

// LogComponent identifies which subsystem emitted a log entry.
type LogComponent string

const (
	LogComponentHTTP       LogComponent = "http"
	LogComponentMarketData LogComponent = "marketdata"
	LogComponentQuote      LogComponent = "quote"
	LogComponentWatchlist  LogComponent = "watchlist"
	LogComponentAnalysis   LogComponent = "analysis"
	LogComponentLedger     LogComponent = "ledger"
	LogComponentScheduler  LogComponent = "scheduler"
	LogComponentSession    LogComponent = "session"
	LogComponentImport     LogComponent = "import"
	LogComponentSystem     LogComponent = "system"
)

// ValidLogComponents is the set accepted by the log filter parser.
var ValidLogComponents = map[LogComponent]bool{
	LogComponentHTTP:       true,
	LogComponentMarketData: true,
	LogComponentQuote:      true,
	LogComponentWatchlist:  true,
	LogComponentAnalysis:   true,
	LogComponentLedger:     true,
	LogComponentScheduler:  true,
	LogComponentSession:    true,
	LogComponentImport:     true,
	LogComponentSystem:     true,
}

// Log is one persisted log entry, queryable through the developer endpoint.
type Log struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Component string    `json:"component"`
	Message   string    `json:"message"`
	Fields    string    `json:"fields,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
}

// LogResponse is a cursor-paginated page of log entries.
type LogResponse struct {
	Logs       []Log  `json:"logs"`
	NextCursor string `json:"nextCursor"`
	HasMore    bool   `json:"hasMore"`
	Count      int    `json:"count"`
}

// LogFilters narrows a log query. All fields are optional; zero values mean
// "no constraint". Cursor is an opaque timestamp-ID pair from a previous page.
type LogFilters struct {
	Levels     []string
	Components []string
	StartDate  *time.Time
	EndDate    *time.Time
	Message    string
	SortDir    string
	Cursor     string
	PerPage    int
}
