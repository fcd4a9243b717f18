package middleware

import (
	"net/http"
	"time"

	"bode-andarilho/agenda/internal/logging"
)

// Logging writes one structured line per request. Query strings are left
// out since export tokens travel there.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		logging.Info("HTTP request completed",
			"request_id", RequestID(r.Context()),
			"method", r.Method,
			"endpoint", routePatternOf(r),
			"status_code", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
