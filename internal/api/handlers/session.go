package handlers

import (
	"net/http"
	"time"

	"github.com/caffeinepub/trade-setup-analyzer/internal/api/middleware"
	"github.com/caffeinepub/trade-setup-analyzer/internal/api/response"
	"github.com/caffeinepub/trade-setup-analyzer/internal/service"
)

// SessionHandler handles HTTP requests for login and logout. Logout also
// resets the quote layer so a fresh session starts from a clean slate.
type SessionHandler struct {
	sessionService *service.SessionService
	quoteService   *service.QuoteService
}

// NewSessionHandler creates a new SessionHandler with the provided service dependencies.
func NewSessionHandler(sessionService *service.SessionService, quoteService *service.QuoteService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		quoteService:   quoteService,
	}
}

// LoginResponse carries the token the client sends back on guarded routes.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login handles POST requests to start a session.
//
// Endpoint: POST /api/session/login
// Response: 200 OK with LoginResponse
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	token, session, err := h.sessionService.Login()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create session", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout handles POST requests to end the session named by the token header.
// On success the quote layer is reset: cached quotes, retry timers, and
// diagnostics all clear.
//
// Endpoint: POST /api/session/logout
// Response: 204 No Content
// Error: 401 Unauthorized when the token is missing, invalid, or unknown
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(middleware.SessionHeader)
	if token == "" {
		response.RespondError(w, http.StatusUnauthorized, "authentication required", "missing session token")
		return
	}

	if err := h.sessionService.Logout(token); err != nil {
		response.RespondError(w, http.StatusUnauthorized, "authentication required", err.Error())
		return
	}

	h.quoteService.Reset()

	response.RespondJSON(w, http.StatusNoContent, nil)
}
