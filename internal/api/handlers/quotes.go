package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/trade-setup-analyzer/internal/api/response"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/service"
)

// QuoteHandler handles HTTP requests for quote endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the QuoteService.
type QuoteHandler struct {
	quoteService *service.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler with the provided service dependency.
func NewQuoteHandler(quoteService *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
	}
}

// Quote handles GET requests for one ticker's quote. The fetch goes through
// the request coordinator, so cached data, de-duplication, spacing, and the
// retry state machine all apply.
//
// Endpoint: GET /api/quotes/{ticker}
// Response: 200 OK with Quote
// Error: QuoteError mapped onto 429/400/404/502/504/500
func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	quote, err := h.quoteService.Fetch(r.Context(), ticker)
	if err != nil {
		h.respondFetchError(w, ticker, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, quote)
}

// State handles GET requests for one ticker's view state: status, last
// outcome, and live cooldown countdown. Unknown tickers report idle.
//
// Endpoint: GET /api/quotes/{ticker}/state
// Response: 200 OK with TickerViewState
func (h *QuoteHandler) State(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	response.RespondJSON(w, http.StatusOK, h.quoteService.State(ticker))
}

// States handles GET requests for every tracked ticker's view state.
//
// Endpoint: GET /api/quotes
// Response: 200 OK with array of TickerViewState sorted by ticker
func (h *QuoteHandler) States(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.quoteService.States())
}

// Refresh handles POST requests forcing a fetch cycle for one ticker. A
// pending auto-retry timer is replaced by this fetch.
//
// Endpoint: POST /api/quotes/{ticker}/refresh
// Response: 200 OK with the refreshed TickerViewState
// Error: QuoteError mapped onto 429/400/404/502/504/500
func (h *QuoteHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	if _, err := h.quoteService.Fetch(r.Context(), ticker); err != nil {
		h.respondFetchError(w, ticker, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, h.quoteService.State(ticker))
}

// Diagnostics handles GET requests for the coordinator's diagnostics
// snapshot: cache contents, recent requests and responses, retry states.
//
// Endpoint: GET /api/diagnostics
// Response: 200 OK with DiagnosticsSnapshot
func (h *QuoteHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.quoteService.Diagnostics())
}

func (h *QuoteHandler) respondFetchError(w http.ResponseWriter, ticker string, err error) {
	var qe *model.QuoteError
	if !errors.As(err, &qe) {
		response.RespondError(w, http.StatusInternalServerError, "quote fetch failed", err.Error())
		return
	}

	var retryAfter float64
	if state := h.quoteService.State(ticker); state.NextRetryAt != nil {
		retryAfter = state.CooldownSeconds
	}
	respondQuoteError(w, qe, retryAfter)
}
