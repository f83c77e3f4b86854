package handlers

import (
	"net/http"

	"github.com/caffeinepub/trade-setup-analyzer/internal/api/response"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
)

// quoteErrorBody is the wire shape for a classified fetch failure. It
// mirrors model.QuoteError's JSON form plus the remaining cooldown when a
// retry is already scheduled, so clients can render a countdown instead of
// polling.
type quoteErrorBody struct {
	Ticker        string          `json:"ticker"`
	Error         string          `json:"error"`
	Provider      string          `json:"provider"`
	ErrorCode     model.ErrorCode `json:"errorCode"`
	IsRateLimited bool            `json:"isRateLimited"`
	RawResponse   string          `json:"rawResponse,omitempty"`
	RetryAfter    float64         `json:"retryAfter,omitempty"`
}

// quoteStatus maps an error code onto its HTTP status. Retry exhaustion
// stays under 429: the upstream limiter is the root cause and the client's
// remedy is the same, waiting.
func quoteStatus(code model.ErrorCode) int {
	switch code {
	case model.ErrCodeRateLimit, model.ErrCodeRetryExhausted:
		return http.StatusTooManyRequests
	case model.ErrCodeInvalidTicker:
		return http.StatusBadRequest
	case model.ErrCodeNoData:
		return http.StatusNotFound
	case model.ErrCodeAPIError, model.ErrCodeNetworkError:
		return http.StatusBadGateway
	case model.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondQuoteError renders a QuoteError with its HTTP mapping. retryAfter
// is seconds until the scheduled retry, or zero when none is pending.
func respondQuoteError(w http.ResponseWriter, qe *model.QuoteError, retryAfter float64) {
	body := quoteErrorBody{
		Ticker:        qe.Ticker,
		Error:         qe.Message,
		Provider:      qe.Provider,
		ErrorCode:     qe.Code,
		IsRateLimited: qe.IsRateLimited(),
		RawResponse:   qe.RawResponse,
		RetryAfter:    retryAfter,
	}
	response.RespondJSON(w, quoteStatus(qe.Code), body)
}
