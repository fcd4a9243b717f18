package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"bode-andarilho/agenda/internal/api"
	"bode-andarilho/agenda/internal/middleware"
)

// RegisterAPIRoutes registers the /api/v1 routes. Export links carry their
// own signed token, so no session middleware sits in front of them.
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers) {
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.RateLimitMiddleware(middleware.NewKeyedLimiter[string](1, 5, 10*time.Minute)))
		v1.Get("/export/attendees", handlers.ExportAttendees())
	})
}
