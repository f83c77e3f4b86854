package marketdata_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/caffeinepub/trade-setup-analyzer/internal/marketdata"
)

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase with spaces", " aapl ", "AAPL"},
		{"already canonical", "AAPL", "AAPL"},
		{"tabs and newlines", "\tmsft\n", "MSFT"},
		{"mixed case", "gooG", "GOOG"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"class shares", " brk.b ", "BRK.B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, marketdata.NormalizeTicker(tt.input))
		})
	}
}

func TestNormalizeTickerIdempotent(t *testing.T) {
	for _, input := range []string{" aapl ", "MSFT", "  brk.b\t", ""} {
		once := marketdata.NormalizeTicker(input)
		assert.Equal(t, once, marketdata.NormalizeTicker(once))
	}
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{"first attempt", 1, 10 * time.Second},
		{"second attempt", 2, 30 * time.Second},
		{"third attempt", 3, 60 * time.Second},
		{"past the cap", 4, 60 * time.Second},
		{"far past the cap", 10, 60 * time.Second},
		{"zero clamps to first", 0, 10 * time.Second},
		{"negative clamps to first", -3, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, marketdata.BackoffDelay(tt.attempt))
		})
	}
}

func TestBackoffDelayMonotonic(t *testing.T) {
	prev := time.Duration(0)
	for attempt := 1; attempt <= 20; attempt++ {
		delay := marketdata.BackoffDelay(attempt)
		assert.Positive(t, delay)
		assert.GreaterOrEqual(t, delay, prev, "attempt %d", attempt)
		assert.LessOrEqual(t, delay, marketdata.MaxRetryDelay)
		prev = delay
	}
}
