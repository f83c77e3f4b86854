package yahoo

// chartResponse mirrors the JSON envelope returned by the Yahoo Finance
// chart API. Only the fields the client reads are mapped; the rest of the
// payload is ignored by the decoder.
//
// Layout:
//   - Chart.Result: array of result objects (one element per requested symbol)
//   - Chart.Result[].Meta: symbol metadata and the live market price
//   - Chart.Result[].Timestamp: Unix timestamps, one per trading day
//   - Chart.Result[].Indicators.Quote: parallel OHLCV arrays
//   - Chart.Error: populated instead of Result when the API rejects the query
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Currency           string  `json:"currency"`
		Symbol             string  `json:"symbol"`
		ExchangeName       string  `json:"exchangeName"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		RegularMarketTime  int64   `json:"regularMarketTime"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []float64 `json:"open"`
			High   []float64 `json:"high"`
			Low    []float64 `json:"low"`
			Close  []float64 `json:"close"`
			Volume []int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// chartError is the error object Yahoo embeds in the chart envelope.
// Code is "Not Found" for unknown or delisted symbols.
type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
