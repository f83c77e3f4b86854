package indicators_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/trade-setup-analyzer/internal/indicators"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
)

func risingSeries(n int, start, step float64) []model.PricePoint {
	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]model.PricePoint, n)
	for i := range points {
		close := start + float64(i)*step
		points[i] = model.PricePoint{
			Date:  day.AddDate(0, 0, i),
			Open:  close - 0.5,
			High:  close + 1,
			Low:   close - 1,
			Close: close,
		}
	}
	return points
}

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	sma, ok := indicators.SMA(values, 5)
	require.True(t, ok)
	assert.InDelta(t, 3.0, sma, 1e-9)

	sma, ok = indicators.SMA(values, 2)
	require.True(t, ok)
	assert.InDelta(t, 4.5, sma, 1e-9)
}

func TestSMAInsufficientData(t *testing.T) {
	_, ok := indicators.SMA([]float64{1, 2, 3}, 5)
	assert.False(t, ok)

	_, ok = indicators.SMA(nil, 1)
	assert.False(t, ok)

	_, ok = indicators.SMA([]float64{1, 2, 3}, 0)
	assert.False(t, ok)
}

func TestClosesPreservesOrder(t *testing.T) {
	points := risingSeries(4, 10, 1)

	closes := indicators.Closes(points)

	assert.Equal(t, []float64{10, 11, 12, 13}, closes)
}

func TestSupportResistance(t *testing.T) {
	points := risingSeries(30, 100, 1)
	// Window covers closes 110..129, so lows span 109..128 and highs 111..130.
	support, resistance, ok := indicators.SupportResistance(points, 20)

	require.True(t, ok)
	assert.InDelta(t, 109.0, support, 1e-9)
	assert.InDelta(t, 130.0, resistance, 1e-9)
}

func TestSupportResistanceInsufficientData(t *testing.T) {
	_, _, ok := indicators.SupportResistance(risingSeries(5, 100, 1), 20)
	assert.False(t, ok)
}

func TestTrendOf(t *testing.T) {
	tests := []struct {
		name     string
		latest   float64
		smaShort float64
		smaLong  float64
		want     model.Trend
	}{
		{"price above rising averages", 120, 110, 100, model.TrendBullish},
		{"price below falling averages", 80, 90, 100, model.TrendBearish},
		{"price dipping under short average", 105, 110, 100, model.TrendFlat},
		{"crossover in progress", 95, 90, 100, model.TrendFlat},
		{"averages equal", 100, 100, 100, model.TrendFlat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, indicators.TrendOf(tt.latest, tt.smaShort, tt.smaLong))
		})
	}
}
