package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bode-andarilho/agenda/internal/api"
	"bode-andarilho/agenda/internal/logging"
	"bode-andarilho/agenda/internal/metrics"
	"bode-andarilho/agenda/internal/middleware"
)

// Options tune the router without widening RegisterRoutes.
type Options struct {
	CORSOrigins []string
	// MetricsHandler defaults to promhttp.Handler().
	MetricsHandler http.Handler
	UpSince        time.Time
}

func RegisterRoutes(handlers *api.Handlers, metricsReg *metrics.MetricsRegistry, opts Options) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.Logging)
	r.Use(middleware.MetricsMiddleware(metricsReg))

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"https://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	upSince := opts.UpSince
	if upSince.IsZero() {
		upSince = time.Now()
	}
	r.Get("/healthCheck", handlers.HealthCheckHandler(upSince))

	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	r.Post("/webhook/{secret}", handlers.TelegramWebhook())

	RegisterAPIRoutes(r, handlers)

	logging.Info("Router initialized with metrics and logging middleware")
	return r
}
