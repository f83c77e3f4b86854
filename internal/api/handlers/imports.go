package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/caffeinepub/trade-setup-analyzer/internal/api/response"
	"github.com/caffeinepub/trade-setup-analyzer/internal/apperrors"
	"github.com/caffeinepub/trade-setup-analyzer/internal/tradeimport"
)

// ImportHandler handles HTTP requests for trade-history import endpoints.
// It serves as the HTTP layer adapter, extracting the upload and delegating
// parsing and persistence to the Importer.
type ImportHandler struct {
	importer *tradeimport.Importer
}

// NewImportHandler creates a new ImportHandler with the provided importer dependency.
func NewImportHandler(importer *tradeimport.Importer) *ImportHandler {
	return &ImportHandler{
		importer: importer,
	}
}

// ImportTrades handles POST requests uploading a CSV trade-history export.
// Accepts either a multipart form with a "file" field or the raw CSV as the
// request body.
//
// Endpoint: POST /api/import/trades
// Response: 200 OK with ImportSummary (rejected lines are reported inside
// the summary, not as an HTTP error)
// Error: 400 Bad Request when the header row is unusable
func (h *ImportHandler) ImportTrades(w http.ResponseWriter, r *http.Request) {
	reader, cleanup, err := uploadReader(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}
	defer cleanup()

	summary, err := h.importer.ImportCSV(r.Context(), reader)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCSVHeaders) {
			response.RespondError(w, http.StatusBadRequest, "invalid CSV headers", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to import trades", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// ListTrades handles GET requests to review imported trades, newest trade
// date first. Supports an optional ?ticker= query parameter.
//
// Endpoint: GET /api/import/trades
// Response: 200 OK with array of TradeRecord
func (h *ImportHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	records, err := h.importer.GetTradeRecords(r.URL.Query().Get("ticker"))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve trades", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, records)
}

// DeleteTrade handles DELETE requests for one imported trade.
//
// Endpoint: DELETE /api/import/trades/{id}
// Response: 204 No Content
// Error: 404 Not Found when the ID is unknown
func (h *ImportHandler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := h.importer.DeleteTradeRecord(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, apperrors.ErrTradeRecordNotFound) {
			response.RespondError(w, http.StatusNotFound, "trade record not found", "")
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to delete trade record", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// uploadReader picks the CSV source from the request: the "file" part of a
// multipart form, or the raw body for direct uploads.
func uploadReader(r *http.Request) (io.Reader, func(), error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		return r.Body, func() {}, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, func() {}, errors.New(`multipart upload must carry a "file" field`)
	}
	return file, func() { _ = file.Close() }, nil
}
