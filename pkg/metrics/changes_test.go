package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestChangeMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChangeMetrics(reg)
	m.IncSubmitted("update")
	m.IncSubmitted("update")
	m.IncResolved("update", "approved")
	m.IncConflict()

	assert.EqualValues(t, 2, sample(t, reg, "aiazent_changes_submitted_total", map[string]string{"action": "update"}).GetCounter().GetValue())
	assert.EqualValues(t, 1, sample(t, reg, "aiazent_changes_resolved_total", map[string]string{"decision": "approved"}).GetCounter().GetValue())
	assert.EqualValues(t, 1, sample(t, reg, "aiazent_changes_resolution_conflicts_total", nil).GetCounter().GetValue())
}

func TestNilChangeMetricsAreNoops(t *testing.T) {
	var m *ChangeMetrics
	m.IncSubmitted("create")
	m.IncResolved("create", "rejected")
	m.IncConflict()
	NewChangeMetrics(nil).IncConflict()
}
