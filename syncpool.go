package docflow

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/hearthform/docflow/internal"
)

// syncJob wraps a synchronous closure so it can flow through
// internal.WorkerPool, which is typed over its job payload rather than a
// return value.
type syncJob struct {
	fn func()
}

func runSyncJob(_ context.Context, j syncJob) {
	j.fn()
}

// SyncPool bounds how many synchronous CPU/I/O-bound helpers (hashing
// large files, building ZIPs, publishing uploads) may run at once across
// the whole process, so one slow disk or network operation never stalls
// every worker's claim loop. It instantiates internal.WorkerPool over
// syncJob instead of a domain message type.
type SyncPool struct {
	pool    *internal.WorkerPool[syncJob]
	started atomic.Bool
}

// NewSyncPool builds a SyncPool with size concurrent slots. size <= 0
// falls back to 4.
func NewSyncPool(size int, log *slog.Logger) *SyncPool {
	if size <= 0 {
		size = 4
	}
	return &SyncPool{pool: internal.NewWorkerPool[syncJob](size, size*2, log)}
}

// Start begins the pool's workers. ctx bounds their lifetime.
func (sp *SyncPool) Start(ctx context.Context) {
	sp.pool.Start(ctx, runSyncJob)
	sp.started.Store(true)
}

// Stop signals the pool's workers to exit and returns a channel closed
// once they have.
func (sp *SyncPool) Stop() internal.DoneChan {
	sp.started.Store(false)
	return sp.pool.Stop()
}

// Run executes fn on the pool and blocks until it completes, returning
// its error. A nil receiver runs fn inline, so callers that construct a
// Worker or Service without a SyncPool still work correctly.
func (sp *SyncPool) Run(fn func() error) error {
	if sp == nil || !sp.started.Load() {
		return fn()
	}
	errCh := make(chan error, 1)
	if !sp.pool.Submit(syncJob{fn: func() { errCh <- fn() }}) {
		return fn()
	}
	return <-errCh
}
