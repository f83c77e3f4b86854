package validation

import (
	"fmt"
	"regexp"

	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
)

// tickerPattern matches normalized symbols: upper-case letters and digits
// with optional interior . or - separators (BRK.B, BTC-USD), 15 chars max.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9](?:[A-Z0-9.\-]{0,13}[A-Z0-9])?$`)

// ValidateTicker checks a normalized ticker symbol.
func ValidateTicker(ticker string) error {
	if ticker == "" {
		return apperrors.ErrEmptyTicker
	}
	if !tickerPattern.MatchString(ticker) {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidTicker, ticker)
	}
	return nil
}
