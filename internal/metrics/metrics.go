package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the agenda bot
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Bot Metrics
	InteractionsTotal   *prometheus.CounterVec
	InteractionDuration *prometheus.HistogramVec
	FlowStepsTotal      *prometheus.CounterVec
	ActiveSessions      prometheus.Gauge

	// Ledger Metrics
	LedgerOperationsTotal *prometheus.CounterVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Job Metrics
	RemindersSentTotal *prometheus.CounterVec
	JobDuration        *prometheus.HistogramVec
}

// NewMetricsRegistry registers every metric on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agenda_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agenda_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "agenda_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method"},
		),

		// Bot Metrics
		InteractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agenda_interactions_total",
				Help: "Inbound interactions by kind and routing outcome",
			},
			[]string{"kind", "outcome"},
		),
		InteractionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agenda_interaction_duration_seconds",
				Help:    "Time spent handling one interaction",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"kind"},
		),
		FlowStepsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agenda_flow_steps_total",
				Help: "Conversation steps by flow and result",
			},
			[]string{"flow", "result"},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agenda_active_sessions",
				Help: "Conversation sessions currently held in memory",
			},
		),

		// Ledger Metrics
		LedgerOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agenda_ledger_operations_total",
				Help: "Attendance ledger operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agenda_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agenda_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Job Metrics
		RemindersSentTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agenda_reminders_sent_total",
				Help: "Event reminders by delivery result",
			},
			[]string{"result"},
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agenda_job_duration_seconds",
				Help:    "Scheduled job execution time in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"job_name"},
		),
	}
}
