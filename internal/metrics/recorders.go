package metrics

import "time"

// The helpers below accept a nil registry so components can run unmetered
// in tests.

func (m *MetricsRegistry) ObserveInteraction(kind, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.InteractionsTotal.WithLabelValues(kind, outcome).Inc()
	m.InteractionDuration.WithLabelValues(kind).Observe(took.Seconds())
}

func (m *MetricsRegistry) CountFlowStep(flow, result string) {
	if m == nil {
		return
	}
	m.FlowStepsTotal.WithLabelValues(flow, result).Inc()
}

func (m *MetricsRegistry) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *MetricsRegistry) CountLedger(operation, outcome string) {
	if m == nil {
		return
	}
	m.LedgerOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *MetricsRegistry) CountCache(pattern string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(pattern).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(pattern).Inc()
}

func (m *MetricsRegistry) CountReminder(result string) {
	if m == nil {
		return
	}
	m.RemindersSentTotal.WithLabelValues(result).Inc()
}

func (m *MetricsRegistry) ObserveJob(name string, took time.Duration) {
	if m == nil {
		return
	}
	m.JobDuration.WithLabelValues(name).Observe(took.Seconds())
}
