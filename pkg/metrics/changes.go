// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aiazent"

// ChangeMetrics counts moderated change submissions and resolutions.
type ChangeMetrics struct {
	submitted *prometheus.CounterVec
	resolved  *prometheus.CounterVec
	conflicts prometheus.Counter
}

func NewChangeMetrics(reg prometheus.Registerer) *ChangeMetrics {
	f := promauto.With(reg)
	return &ChangeMetrics{
		submitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "changes",
			Name:      "submitted_total",
			Help:      "Pending changes submitted for review.",
		}, []string{"action"}),
		resolved: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "changes",
			Name:      "resolved_total",
			Help:      "Pending changes resolved by a reviewer.",
		}, []string{"action", "decision"}),
		conflicts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "changes",
			Name:      "resolution_conflicts_total",
			Help:      "Resolutions that found the change missing or already processed.",
		}),
	}
}

func (m *ChangeMetrics) IncSubmitted(action string) {
	if m != nil {
		m.submitted.WithLabelValues(label(action)).Inc()
	}
}

func (m *ChangeMetrics) IncResolved(action, decision string) {
	if m != nil {
		m.resolved.WithLabelValues(label(action), label(decision)).Inc()
	}
}

func (m *ChangeMetrics) IncConflict() {
	if m != nil {
		m.conflicts.Inc()
	}
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
