package middleware

import (
	"net/http"
	"time"

	"relief-portal-go/pkg/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger writes one structured line per request.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimw.GetReqID(r.Context()),
			}
			switch {
			case ww.Status() >= 500:
				log.Error("http: request failed", args...)
			case ww.Status() >= 400:
				log.Warn("http: request rejected", args...)
			default:
				log.Info("http: request", args...)
			}
		})
	}
}
