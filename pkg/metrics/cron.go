package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CronJobMetrics tracks scheduled job runs by name. A nil registerer yields
// working but unexported collectors.
type CronJobMetrics struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
}

func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	f := promauto.With(reg)
	return &CronJobMetrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "runs_total",
			Help:      "Cron job runs by outcome.",
		}, []string{"job", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "run_duration_seconds",
			Help:      "Wall time of cron job runs.",
			Buckets:   []float64{.05, .1, .5, 1, 5, 15, 60, 300},
		}, []string{"job"}),
		lastSuccess: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cron",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}, []string{"job"}),
	}
}

// Observe records one finished run of job.
func (c *CronJobMetrics) Observe(job string, took time.Duration, err error) {
	if c == nil {
		return
	}
	job = label(job)
	c.duration.WithLabelValues(job).Observe(took.Seconds())
	if err != nil {
		c.runs.WithLabelValues(job, "failure").Inc()
		return
	}
	c.runs.WithLabelValues(job, "success").Inc()
	c.lastSuccess.WithLabelValues(job).SetToCurrentTime()
}
