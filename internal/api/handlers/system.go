package handlers

import (
	"net/http"

	"github.com/caffeinepub/trade-setup-analyzer/internal/api/request"
	"github.com/caffeinepub/trade-setup-analyzer/internal/api/response"
	"github.com/caffeinepub/trade-setup-analyzer/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
	logService    *service.LogService
}

// NewSystemHandler creates a new SystemHandler with the provided service dependencies.
func NewSystemHandler(systemService *service.SystemService, logService *service.LogService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
		logService:    logService,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.systemService.CheckHealth(); err != nil {
		body := HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		}
		response.RespondJSON(w, http.StatusServiceUnavailable, body)
		return
	}

	body := HealthResponse{
		Status:   "healthy",
		Database: "connected",
	}
	response.RespondJSON(w, http.StatusOK, body)
}

// VersionResponse represents the version check response.
type VersionResponse struct {
	Version string `json:"version"`
}

// Version handles GET requests for the running build's version string.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with VersionResponse
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, VersionResponse{
		Version: h.systemService.CheckVersion(),
	})
}

// Info handles GET requests for host and process statistics.
//
// Endpoint: GET /api/system/info
// Response: 200 OK with SystemInfo
func (h *SystemHandler) Info(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.systemService.Info())
}

// Logs handles GET requests for the persisted log stream, filtered and
// cursor-paginated.
//
// Endpoint: GET /api/system/logs
// Response: 200 OK with LogResponse
// Error: 400 Bad Request for invalid filter parameters
func (h *SystemHandler) Logs(w http.ResponseWriter, r *http.Request) {
	filters, err := request.ParseLogFilters(
		r.URL.Query().Get("level"),
		r.URL.Query().Get("component"),
		r.URL.Query().Get("startDate"),
		r.URL.Query().Get("endDate"),
		r.URL.Query().Get("message"),
		r.URL.Query().Get("sortDir"),
		r.URL.Query().Get("cursor"),
		r.URL.Query().Get("perPage"),
	)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid filter parameters", err.Error())
		return
	}

	logs, err := h.logService.GetLogs(filters)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve logs", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, logs)
}
