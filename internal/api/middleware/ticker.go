package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/trade-setup-analyzer/internal/api/response"
	"github.com/caffeinepub/trade-setup-analyzer/internal/marketdata"
	"github.com/caffeinepub/trade-setup-analyzer/internal/validation"
)

// ValidateTickerMiddleware validates that the ticker URL parameter looks like
// a market symbol after normalization. Returns 400 Bad Request when the
// symbol is missing or malformed, so handlers below only see plausible
// tickers and garbage never reaches the provider.
func ValidateTickerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ticker := marketdata.NormalizeTicker(chi.URLParam(r, "ticker"))

		if err := validation.ValidateTicker(ticker); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid ticker", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
