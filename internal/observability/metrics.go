package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the relay. A nil
// *Metrics is valid; the observe helpers become no-ops, which keeps tests
// free of global registry collisions.
type Metrics struct {
	ActiveSessions  prometheus.Gauge
	SessionOutcomes *prometheus.CounterVec
	BackendEvents   *prometheus.CounterVec
	UIEdits         *prometheus.CounterVec
	ControlCalls    *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of task sessions currently streaming.",
		}),
		SessionOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_outcomes_total",
			Help:      "Terminal session outcomes by kind.",
		}, []string{"outcome"}),
		BackendEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_events_total",
			Help:      "Normalized backend events by kind.",
		}, []string{"kind"}),
		UIEdits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ui_edits_total",
			Help:      "Chat message edits by result.",
		}, []string{"result"}),
		ControlCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "control_calls_total",
			Help:      "Out-of-band stop calls by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

func (m *Metrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.SessionOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveEvent(kind string) {
	if m == nil {
		return
	}
	m.BackendEvents.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveEdit(result string) {
	if m == nil {
		return
	}
	m.UIEdits.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveControlCall(result string) {
	if m == nil {
		return
	}
	m.ControlCalls.WithLabelValues(result).Inc()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
