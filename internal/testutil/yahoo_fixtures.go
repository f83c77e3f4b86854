package testutil

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChartJSON builds a Yahoo chart API response body with one close per day,
// starting at the given date. Open, high, low, and volume are derived from
// the closes so fixtures stay one line in tests.
func ChartJSON(ticker string, start time.Time, closes ...float64) string {
	return chartJSON(ticker, start, 0, time.Time{}, closes)
}

// ChartJSONRealtime is ChartJSON with a regular market price in the chart
// metadata, which marks the resulting quote as realtime.
func ChartJSONRealtime(ticker string, start time.Time, marketPrice float64, marketTime time.Time, closes ...float64) string {
	return chartJSON(ticker, start, marketPrice, marketTime, closes)
}

// ChartErrorJSON builds the envelope Yahoo returns when it rejects a query,
// e.g. code "Not Found" for an unknown symbol.
func ChartErrorJSON(code, description string) string {
	body, _ := json.Marshal(map[string]any{
		"chart": map[string]any{
			"result": nil,
			"error": map[string]any{
				"code":        code,
				"description": description,
			},
		},
	})
	return string(body)
}

// EmptyChartJSON builds a well-formed envelope with no results.
func EmptyChartJSON() string {
	return `{"chart":{"result":[],"error":null}}`
}

func chartJSON(ticker string, start time.Time, marketPrice float64, marketTime time.Time, closes []float64) string {
	timestamps := make([]int64, len(closes))
	opens := make([]float64, len(closes))
	highs := make([]float64, len(closes))
	lows := make([]float64, len(closes))
	volumes := make([]int64, len(closes))
	for i, c := range closes {
		timestamps[i] = start.AddDate(0, 0, i).Unix()
		opens[i] = c - 0.25
		highs[i] = c + 0.5
		lows[i] = c - 0.75
		volumes[i] = int64(1_000_000 + i*10_000)
	}

	meta := map[string]any{
		"currency":     "USD",
		"symbol":       ticker,
		"exchangeName": "NMS",
	}
	if marketPrice > 0 {
		meta["regularMarketPrice"] = marketPrice
		meta["regularMarketTime"] = marketTime.Unix()
	}

	body, err := json.Marshal(map[string]any{
		"chart": map[string]any{
			"result": []map[string]any{{
				"meta":      meta,
				"timestamp": timestamps,
				"indicators": map[string]any{
					"quote": []map[string]any{{
						"open":   opens,
						"high":   highs,
						"low":    lows,
						"close":  closes,
						"volume": volumes,
					}},
				},
			}},
			"error": nil,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("building chart fixture: %v", err))
	}
	return string(body)
}
