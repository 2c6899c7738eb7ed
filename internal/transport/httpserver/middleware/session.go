package middleware

import (
	"encoding/json"
	"net/http"

	"relief-portal-go/internal/session"
)

// RequireSession holds requests until the initial session check is done
// and rejects them when nobody is signed in.
func RequireSession(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sessions.Wait(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, "session_unavailable", "session not ready")
				return
			}
			if _, ok := sessions.Identity(); !ok {
				writeError(w, http.StatusUnauthorized, "not_authenticated", "sign in required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
