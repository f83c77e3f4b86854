package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/trade-setup-analyzer/internal/api/request"
	"github.com/caffeinepub/trade-setup-analyzer/internal/api/response"
	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
	"github.com/caffeinepub/trade-setup-analyzer/internal/service"
)

// WatchlistHandler handles HTTP requests for watchlist endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the WatchlistService.
type WatchlistHandler struct {
	watchlistService *service.WatchlistService
}

// NewWatchlistHandler creates a new WatchlistHandler with the provided service dependency.
func NewWatchlistHandler(watchlistService *service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistService: watchlistService,
	}
}

// List handles GET requests to retrieve the watchlist sorted by ticker.
//
// Endpoint: GET /api/watchlist
// Response: 200 OK with array of WatchlistItem
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.watchlistService.GetWatchlist()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve watchlist", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, items)
}

// Add handles POST requests to track a new ticker.
//
// Endpoint: POST /api/watchlist
// Response: 201 Created with the stored WatchlistItem
// Error: 400 for a malformed ticker, 409 when the ticker is already tracked
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req request.AddWatchlistItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	item, err := h.watchlistService.AddWatchlistItem(req.Ticker, req.Label)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrEmptyTicker), errors.Is(err, apperrors.ErrInvalidTicker):
			response.RespondError(w, http.StatusBadRequest, "invalid ticker", err.Error())
		case errors.Is(err, apperrors.ErrDuplicateEntry):
			response.RespondError(w, http.StatusConflict, "ticker already on watchlist", "")
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to store watchlist item", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, item)
}

// Delete handles DELETE requests to stop tracking a ticker.
//
// Endpoint: DELETE /api/watchlist/{id}
// Response: 204 No Content
// Error: 404 Not Found when the ID is unknown
func (h *WatchlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.watchlistService.DeleteWatchlistItem(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, apperrors.ErrWatchlistItemNotFound) {
			response.RespondError(w, http.StatusNotFound, "watchlist item not found", "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete watchlist item", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// RefreshResponse reports how many watchlist tickers were refreshed.
type RefreshResponse struct {
	Refreshed int `json:"refreshed"`
}

// Refresh handles POST requests to fetch a fresh quote for every watchlist
// ticker. Individual fetch failures are skipped, not fatal; the count covers
// successes only.
//
// Endpoint: POST /api/watchlist/refresh
// Response: 200 OK with RefreshResponse
func (h *WatchlistHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshed, err := h.watchlistService.RefreshAll(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "watchlist refresh failed", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, RefreshResponse{Refreshed: refreshed})
}
