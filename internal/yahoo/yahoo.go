package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
)

// ProviderName identifies this client in quote and error payloads.
const ProviderName = "yahoo"

// DefaultBaseURL is the public Yahoo Finance query host. Tests point the
// client at an httptest server instead.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// maxRawResponseBytes caps how much of a failing response body is carried
// into QuoteError.RawResponse.
const maxRawResponseBytes = 512

// Client fetches price data from the Yahoo Finance chart API and translates
// every failure mode into a *model.QuoteError with a stable error code.
// It satisfies the marketdata.Fetcher contract: errors are classified here,
// at the edge, so callers never inspect HTTP details.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	log        zerolog.Logger
}

// NewClient creates a Yahoo Finance client.
//
// Parameters:
//   - baseURL: Scheme and host of the chart API. Empty is accepted at
//     construction time and reported as a config_error on first use.
//   - timeout: Per-request deadline enforced by the underlying HTTP client
//   - log: Logger scoped by the caller
//
// Returns:
//   - *Client: A client ready for use
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		userAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		log:        log,
	}
}

// FetchQuote retrieves the last five trading days for a ticker and returns
// the latest price plus the daily series.
//
// The regular market price from chart metadata is preferred when present and
// marks the quote as realtime; otherwise the most recent close is used.
//
// Parameters:
//   - ctx: Context for cancellation and deadlines
//   - ticker: Normalized ticker symbol (e.g., "AAPL")
//
// Returns:
//   - *model.Quote: Latest price with the five-day OHLCV series
//   - error: Always a *model.QuoteError on failure
func (c *Client) FetchQuote(ctx context.Context, ticker string) (*model.Quote, error) {
	query := url.Values{}
	query.Set("interval", "1d")
	query.Set("range", "5d")

	result, qerr := c.queryChart(ctx, ticker, query)
	if qerr != nil {
		return nil, qerr
	}

	points, qerr := buildPricePoints(ticker, result)
	if qerr != nil {
		return nil, qerr
	}

	quote := &model.Quote{
		Ticker:      ticker,
		Timestamp:   points[len(points)-1].Date,
		LatestPrice: points[len(points)-1].Close,
		PricePoints: points,
		Provider:    ProviderName,
	}
	if result.Meta.RegularMarketPrice > 0 {
		quote.LatestPrice = result.Meta.RegularMarketPrice
		quote.IsRealtime = true
		if result.Meta.RegularMarketTime > 0 {
			quote.Timestamp = time.Unix(result.Meta.RegularMarketTime, 0).UTC()
		}
	}
	return quote, nil
}

// FetchDailyHistory retrieves daily price data for a ticker between two
// dates, used to build the longer series behind moving averages and
// support/resistance levels.
//
// Parameters:
//   - ctx: Context for cancellation and deadlines
//   - ticker: Normalized ticker symbol
//   - start: Beginning of the range (inclusive)
//   - end: End of the range (inclusive)
//
// Returns:
//   - []model.PricePoint: Daily OHLCV points in chronological order
//   - error: Always a *model.QuoteError on failure
func (c *Client) FetchDailyHistory(ctx context.Context, ticker string, start, end time.Time) ([]model.PricePoint, error) {
	query := url.Values{}
	query.Set("interval", "1d")
	query.Set("period1", fmt.Sprintf("%d", start.Unix()))
	query.Set("period2", fmt.Sprintf("%d", end.Unix()))

	result, qerr := c.queryChart(ctx, ticker, query)
	if qerr != nil {
		return nil, qerr
	}
	points, qerr := buildPricePoints(ticker, result)
	if qerr != nil {
		return nil, qerr
	}
	return points, nil
}

// queryChart executes one chart API request and peels the envelope down to
// a single chartResult, classifying every failure along the way.
func (c *Client) queryChart(ctx context.Context, ticker string, query url.Values) (chartResult, *model.QuoteError) {
	if c.baseURL == "" {
		return chartResult{}, model.NewQuoteError(ticker, model.ErrCodeConfigError, ProviderName,
			"quote provider base URL is not configured")
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return chartResult{}, model.NewQuoteError(ticker, model.ErrCodeConfigError, ProviderName,
			fmt.Sprintf("building chart request: %v", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chartResult{}, c.classifyTransportError(ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return chartResult{}, c.classifyTransportError(ticker, err)
	}

	if resp.StatusCode != http.StatusOK {
		return chartResult{}, c.classifyHTTPStatus(ticker, resp.StatusCode, body)
	}

	var envelope chartResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		qerr := model.NewQuoteError(ticker, model.ErrCodeAPIError, ProviderName, "malformed chart response")
		qerr.RawResponse = truncateRaw(body)
		return chartResult{}, qerr
	}

	if envelope.Chart.Error != nil {
		return chartResult{}, c.classifyChartError(ticker, envelope.Chart.Error)
	}
	if len(envelope.Chart.Result) == 0 {
		return chartResult{}, model.NewQuoteError(ticker, model.ErrCodeNoData, ProviderName,
			fmt.Sprintf("no chart results returned for %s", ticker))
	}
	return envelope.Chart.Result[0], nil
}

// classifyTransportError maps request-level failures. Deadline and timeout
// conditions become timeout; everything else that never produced a response
// is a network_error.
func (c *Client) classifyTransportError(ticker string, err error) *model.QuoteError {
	code := model.ErrCodeNetworkError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		code = model.ErrCodeTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		code = model.ErrCodeTimeout
	}

	c.log.Warn().Err(err).Str("ticker", ticker).Str("code", string(code)).Msg("chart request failed")
	return model.NewQuoteError(ticker, code, ProviderName, fmt.Sprintf("chart request failed: %v", err))
}

// classifyHTTPStatus maps non-200 responses: 429 is a rate limit, 404 an
// unknown symbol, and 5xx a provider-side failure.
func (c *Client) classifyHTTPStatus(ticker string, status int, body []byte) *model.QuoteError {
	var qerr *model.QuoteError
	switch {
	case status == http.StatusTooManyRequests:
		qerr = model.NewQuoteError(ticker, model.ErrCodeRateLimit, ProviderName,
			fmt.Sprintf("rate limited while fetching %s", ticker))
	case status == http.StatusNotFound:
		qerr = model.NewQuoteError(ticker, model.ErrCodeInvalidTicker, ProviderName,
			fmt.Sprintf("no listing found for %s", ticker))
	case status >= 500:
		qerr = model.NewQuoteError(ticker, model.ErrCodeAPIError, ProviderName,
			fmt.Sprintf("provider returned status %d", status))
	default:
		qerr = model.NewQuoteError(ticker, model.ErrCodeUnknown, ProviderName,
			fmt.Sprintf("unexpected status %d from provider", status))
	}
	qerr.RawResponse = truncateRaw(body)

	c.log.Warn().Int("status", status).Str("ticker", ticker).Str("code", string(qerr.Code)).
		Msg("chart request rejected")
	return qerr
}

// classifyChartError maps errors embedded in a 200 envelope. Yahoo reports
// unknown and delisted symbols as code "Not Found".
func (c *Client) classifyChartError(ticker string, chartErr *chartError) *model.QuoteError {
	code := model.ErrCodeAPIError
	if chartErr.Code == "Not Found" {
		code = model.ErrCodeInvalidTicker
	}
	msg := chartErr.Description
	if msg == "" {
		msg = fmt.Sprintf("provider rejected query for %s", ticker)
	}
	qerr := model.NewQuoteError(ticker, code, ProviderName, msg)
	qerr.RawResponse = fmt.Sprintf("%s: %s", chartErr.Code, chartErr.Description)
	return qerr
}

// buildPricePoints flattens a chartResult into chronological OHLCV points.
// Missing or mismatched series are reported as no_data.
func buildPricePoints(ticker string, result chartResult) ([]model.PricePoint, *model.QuoteError) {
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, model.NewQuoteError(ticker, model.ErrCodeNoData, ProviderName,
			fmt.Sprintf("no price data returned for %s", ticker))
	}
	series := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(series.Close) != n || len(series.Open) != n || len(series.High) != n || len(series.Low) != n {
		return nil, model.NewQuoteError(ticker, model.ErrCodeNoData, ProviderName,
			fmt.Sprintf("mismatched price series lengths for %s", ticker))
	}

	points := make([]model.PricePoint, n)
	for i, ts := range result.Timestamp {
		points[i] = model.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Open:  series.Open[i],
			High:  series.High[i],
			Low:   series.Low[i],
			Close: series.Close[i],
		}
		if i < len(series.Volume) {
			points[i].Volume = series.Volume[i]
		}
	}
	return points, nil
}

// truncateRaw keeps error payloads small enough to store and log.
func truncateRaw(body []byte) string {
	if len(body) > maxRawResponseBytes {
		return string(body[:maxRawResponseBytes])
	}
	return string(body)
}
