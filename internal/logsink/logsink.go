// Package logsink persists the zerolog event stream into the request_log
// table so entries can be queried back through the developer logs endpoint.
package logsink

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/repository"
)

// bufferSize bounds the number of entries waiting for insertion. When the
// buffer is full, new entries are dropped rather than blocking the caller's
// log statement.
const bufferSize = 256

// Sink is an io.Writer that decodes zerolog JSON lines and stores them
// asynchronously. Plug it into the logger via zerolog.MultiLevelWriter.
// Writes arriving after Close are discarded.
type Sink struct {
	logRepo *repository.LogRepository
	entries chan model.Log
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// New creates a new Sink writing through the provided repository and starts
// its background insert loop.
func New(logRepo *repository.LogRepository) *Sink {
	s := &Sink{
		logRepo: logRepo,
		entries: make(chan model.Log, bufferSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Write queues one log event for insertion. It never blocks and never
// returns an error; a logging failure must not take down the request that
// triggered the log line.
func (s *Sink) Write(p []byte) (int, error) {
	entry, ok := parseLine(p)
	if !ok {
		return len(p), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return len(p), nil
	}

	select {
	case s.entries <- entry:
	default:
	}
	return len(p), nil
}

// Close stops the insert loop after draining queued entries. Call it during
// shutdown so the tail of the log stream reaches the database. Close is
// idempotent.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.entries)
	<-s.done
}

func (s *Sink) run() {
	defer close(s.done)
	for entry := range s.entries {
		// An insert failure cannot be reported through the sink itself.
		_ = s.logRepo.Insert(entry)
	}
}

// parseLine decodes one zerolog JSON line into a log row. Lines without a
// level field (raw writes, console artifacts) are skipped.
func parseLine(p []byte) (model.Log, bool) {
	var raw map[string]any
	if err := json.Unmarshal(p, &raw); err != nil {
		return model.Log{}, false
	}

	level, ok := raw["level"].(string)
	if !ok {
		return model.Log{}, false
	}

	entry := model.Log{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Level:     foldLevel(level),
	}

	if ts, ok := raw["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.Timestamp = parsed.UTC()
		}
	}
	if msg, ok := raw["message"].(string); ok {
		entry.Message = msg
	}
	if component, ok := raw["component"].(string); ok {
		entry.Component = component
	}
	if requestID, ok := raw["request_id"].(string); ok {
		entry.RequestID = requestID
	}

	// Everything else stays queryable as a JSON blob.
	delete(raw, "level")
	delete(raw, "time")
	delete(raw, "message")
	delete(raw, "component")
	delete(raw, "request_id")
	if len(raw) > 0 {
		if fields, err := json.Marshal(raw); err == nil {
			entry.Fields = string(fields)
		}
	}

	return entry, true
}

// foldLevel maps zerolog's full level range onto the four levels the log
// view filters on.
func foldLevel(level string) string {
	switch level {
	case "trace":
		return string(model.LogLevelDebug)
	case "fatal", "panic":
		return string(model.LogLevelError)
	default:
		return level
	}
}
