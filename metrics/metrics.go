// Package metrics exposes Prometheus collectors for queue depth, worker
// activity, and conversion latency.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QueueDepth reports the number of tasks currently in each status.
	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "docflow_queue_depth",
			Help: "Number of tasks by status",
		},
		[]string{"status"},
	)

	ActiveWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docflow_active_workers",
			Help: "Number of workers currently holding a claim",
		},
	)

	OfficeSemaphoreInUse = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "docflow_office_semaphore_in_use",
			Help: "Number of office-suite conversion slots currently held",
		},
	)

	TasksClaimed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docflow_tasks_claimed_total",
			Help: "Total number of tasks claimed by a worker",
		},
	)

	TasksCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docflow_tasks_completed_total",
			Help: "Total number of tasks reaching a terminal state, by outcome",
		},
		[]string{"outcome"},
	)

	ConversionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docflow_conversion_duration_seconds",
			Help:    "Wall-clock duration of the convert step, by format",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docflow_cache_hits_total",
			Help: "Total number of enqueue or recheck cache hits by content hash",
		},
	)

	StaleReleased = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docflow_stale_released_total",
			Help: "Total number of tasks returned to Queued by the reaper",
		},
	)

	PublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docflow_publish_failures_total",
			Help: "Total number of failed object-store uploads",
		},
	)
)

func init() {
	prometheus.MustRegister(
		QueueDepth,
		ActiveWorkers,
		OfficeSemaphoreInUse,
		TasksClaimed,
		TasksCompleted,
		ConversionDuration,
		CacheHits,
		StaleReleased,
		PublishFailures,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures an operation's duration for later recording to a
// histogram.
type Timer struct {
	start time.Time
}

// NewTimer starts a Timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDurationVec records elapsed time to histogram under labels.
func (t *Timer) ObserveDurationVec(histogram *prometheus.HistogramVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}
