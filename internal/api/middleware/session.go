package middleware

import (
	"net/http"

	"github.com/caffeinepub/trade-setup-analyzer/internal/api/response"
	"github.com/caffeinepub/trade-setup-analyzer/internal/service"
)

// SessionHeader carries the fernet session token on guarded routes.
const SessionHeader = "X-Session-Token"

// RequireSession rejects requests that do not carry a valid, unexpired
// session token. Applied to mutating routes; reads stay open.
func RequireSession(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(SessionHeader)
			if token == "" {
				response.RespondError(w, http.StatusUnauthorized, "authentication required", "missing session token")
				return
			}

			if _, err := sessions.Validate(token); err != nil {
				response.RespondError(w, http.StatusUnauthorized, "authentication required", err.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
