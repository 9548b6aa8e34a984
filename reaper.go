package docflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/hearthform/docflow/internal"
	"github.com/hearthform/docflow/metrics"
)

// reaperStore is the slice of Store the Reaper depends on: ReleaseStale
// to do the sweep itself, Stats to refresh the queue-depth gauges on the
// same cadence (Stats is cheap relative to the sweep period).
type reaperStore interface {
	Claimer
	Observer
}

// Reaper periodically returns hung Processing tasks to Queued. Exactly
// one Reaper runs per Pool: duplicating it across workers would cause
// spurious releases.
type Reaper struct {
	lcBase

	store    reaperStore
	task     internal.TimerTask
	interval time.Duration
	timeout  time.Duration
	log      *slog.Logger
}

// NewReaper constructs a Reaper that releases tasks stuck in Processing
// for longer than timeout, checking every interval.
func NewReaper(store reaperStore, interval, timeout time.Duration, log *slog.Logger) *Reaper {
	return &Reaper{
		store:    store,
		interval: interval,
		timeout:  timeout,
		log:      log,
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	n, err := r.store.ReleaseStale(ctx, r.timeout)
	if err != nil {
		r.log.Error("stale sweep failed", "err", err)
		return
	}
	if n > 0 {
		metrics.StaleReleased.Add(float64(n))
		r.log.Info("released stale tasks", "count", n)
	}
	r.refreshGauges(ctx)
}

func (r *Reaper) refreshGauges(ctx context.Context) {
	stats, err := r.store.Stats(ctx)
	if err != nil {
		r.log.Warn("stats refresh failed", "err", err)
		return
	}
	metrics.QueueDepth.WithLabelValues("QUEUED").Set(float64(stats.Queued))
	metrics.QueueDepth.WithLabelValues("PROCESSING").Set(float64(stats.Processing))
	metrics.QueueDepth.WithLabelValues("COMPLETED").Set(float64(stats.Completed))
	metrics.QueueDepth.WithLabelValues("FAILED").Set(float64(stats.Failed))
}

// Start begins the periodic sweep.
func (r *Reaper) Start(ctx context.Context) error {
	if err := r.tryStart(); err != nil {
		return err
	}
	r.task.Start(ctx, r.sweep, r.interval)
	return nil
}

// Stop terminates the sweep, waiting up to timeout for the in-flight run
// to finish.
func (r *Reaper) Stop(timeout time.Duration) error {
	return r.tryStop(timeout, r.task.Stop)
}
