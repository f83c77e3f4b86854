// Package indicators computes the setup math behind an analysis: moving
// averages, support and resistance levels, and trend classification. All
// functions are pure and operate on chronological price series.
package indicators

import (
	talib "github.com/markcheno/go-talib"

	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
)

// Periods used by the analysis service. SMA windows follow the common
// 20/50 day convention; support and resistance look back one trading month.
const (
	SMAShortPeriod = 20
	SMALongPeriod  = 50
	PivotLookback  = 20
)

// Closes extracts the close series from price points, oldest first.
func Closes(points []model.PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}

// SMA returns the most recent simple moving average over the given period.
// The second return value is false when the series is shorter than the
// period.
func SMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	out := talib.Sma(values, period)
	return out[len(out)-1], true
}

// SupportResistance returns the lowest low and highest high over the
// trailing lookback window. The third return value is false when the series
// is shorter than the window.
func SupportResistance(points []model.PricePoint, lookback int) (support, resistance float64, ok bool) {
	if lookback <= 0 || len(points) < lookback {
		return 0, 0, false
	}
	lows := make([]float64, len(points))
	highs := make([]float64, len(points))
	for i, p := range points {
		lows[i] = p.Low
		highs[i] = p.High
	}
	minOut := talib.Min(lows, lookback)
	maxOut := talib.Max(highs, lookback)
	return minOut[len(minOut)-1], maxOut[len(maxOut)-1], true
}

// TrendOf classifies a series by comparing the latest price against the
// short moving average, and the short against the long. Bullish requires
// price above a rising pair, bearish the mirror image; anything mixed is
// flat.
func TrendOf(latest, smaShort, smaLong float64) model.Trend {
	switch {
	case smaShort > smaLong && latest > smaShort:
		return model.TrendBullish
	case smaShort < smaLong && latest < smaShort:
		return model.TrendBearish
	default:
		return model.TrendFlat
	}
}
