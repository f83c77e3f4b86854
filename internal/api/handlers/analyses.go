package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/trade-setup-analyzer/internal/api/request"
	"github.com/caffeinepub/trade-setup-analyzer/internal/api/response"
	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
	"github.com/caffeinepub/trade-setup-analyzer/internal/model"
	"github.com/caffeinepub/trade-setup-analyzer/internal/service"
)

// AnalysisHandler handles HTTP requests for trade-setup analysis endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the AnalysisService.
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler with the provided service dependency.
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// Create handles POST requests to run an analysis for a ticker. The quote
// comes through the request coordinator, so its failures surface with the
// same mapping as the quote endpoints.
//
// Endpoint: POST /api/analyses
// Response: 201 Created with the persisted TradeSetup
// Error: 400 for bad body or ticker, QuoteError mapping otherwise
func (h *AnalysisHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	setup, err := h.analysisService.Analyze(r.Context(), req.Ticker, req.Notes)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmptyTicker) {
			response.RespondError(w, http.StatusBadRequest, "invalid ticker", err.Error())
			return
		}
		var qe *model.QuoteError
		if errors.As(err, &qe) {
			respondQuoteError(w, qe, 0)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "analysis failed", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, setup)
}

// List handles GET requests to retrieve stored analyses, newest first.
// Supports optional ?ticker= and ?limit= query parameters.
//
// Endpoint: GET /api/analyses
// Response: 200 OK with array of TradeSetup
func (h *AnalysisHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			response.RespondError(w, http.StatusBadRequest, "invalid limit: must be a positive number", "")
			return
		}
		limit = parsed
	}

	setups, err := h.analysisService.GetTradeSetups(r.URL.Query().Get("ticker"), limit)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve analyses", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, setups)
}

// Get handles GET requests for a single analysis by ID.
//
// Endpoint: GET /api/analyses/{id}
// Response: 200 OK with TradeSetup
// Error: 404 Not Found when the ID is unknown
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	setup, err := h.analysisService.GetTradeSetupOnID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, apperrors.ErrAnalysisNotFound) {
			response.RespondError(w, http.StatusNotFound, "analysis not found", "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve analysis", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, setup)
}

// Delete handles DELETE requests for a single analysis by ID.
//
// Endpoint: DELETE /api/analyses/{id}
// Response: 204 No Content
// Error: 404 Not Found when the ID is unknown
func (h *AnalysisHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.analysisService.DeleteTradeSetup(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, apperrors.ErrAnalysisNotFound) {
			response.RespondError(w, http.StatusNotFound, "analysis not found", "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete analysis", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
