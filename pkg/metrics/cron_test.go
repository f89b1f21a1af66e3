package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample returns the metric in family name whose labels include want.
func sample(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			got := map[string]string{}
			for _, l := range m.GetLabel() {
				got[l.GetName()] = l.GetValue()
			}
			for k, v := range want {
				if got[k] != v {
					continue next
				}
			}
			return m
		}
	}
	t.Fatalf("no %s sample with labels %v", name, want)
	return nil
}

func TestCronJobMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.Observe("temp-asset-sweep", 250*time.Millisecond, nil)
	m.Observe("temp-asset-sweep", time.Second, errors.New("bucket gone"))
	m.Observe("", time.Millisecond, nil)

	assert.EqualValues(t, 1, sample(t, reg, "aiazent_cron_runs_total", map[string]string{"job": "temp-asset-sweep", "result": "success"}).GetCounter().GetValue())
	assert.EqualValues(t, 1, sample(t, reg, "aiazent_cron_runs_total", map[string]string{"job": "temp-asset-sweep", "result": "failure"}).GetCounter().GetValue())
	assert.EqualValues(t, 1, sample(t, reg, "aiazent_cron_runs_total", map[string]string{"job": "unknown"}).GetCounter().GetValue())

	hist := sample(t, reg, "aiazent_cron_run_duration_seconds", map[string]string{"job": "temp-asset-sweep"}).GetHistogram()
	assert.EqualValues(t, 2, hist.GetSampleCount())
	assert.InDelta(t, 1.25, hist.GetSampleSum(), 1e-9)

	last := sample(t, reg, "aiazent_cron_last_success_timestamp_seconds", map[string]string{"job": "temp-asset-sweep"}).GetGauge().GetValue()
	assert.InDelta(t, float64(time.Now().Unix()), last, 5)
}

func TestNilCronJobMetricsIsNoop(t *testing.T) {
	var m *CronJobMetrics
	m.Observe("x", time.Second, nil)
	NewCronJobMetrics(nil).Observe("x", time.Second, errors.New("boom"))
}
