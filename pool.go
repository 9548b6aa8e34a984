package docflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hearthform/docflow/converter"
	"github.com/hearthform/docflow/internal"
	"github.com/hearthform/docflow/publish"
)

// Pool supervises a fixed set of Workers sharing one Store and one
// Reaper. At Start, it first resets any task left Processing by a prior
// process instance (ResetStartup), then starts the Reaper and every
// Worker.
type Pool struct {
	lcBase

	store    Store
	dispatch *converter.Dispatch
	pub      publish.Publisher
	syncPool *SyncPool
	cfg      Config
	log      *slog.Logger

	workers []*Worker
	reaper  *Reaper
}

// NewPool constructs a Pool of cfg.NumWorkers Workers, each with a
// stable identity "worker_1".."worker_N", sharing one SyncPool for
// synchronous helpers and (through dispatch) one office-suite
// semaphore. pub may be nil.
func NewPool(store Store, dispatch *converter.Dispatch, pub publish.Publisher, cfg Config, log *slog.Logger) *Pool {
	syncPool := NewSyncPool(cfg.SyncPoolSize, log)
	workers := make([]*Worker, cfg.NumWorkers)
	wc := WorkerConfig{
		PollInterval:     cfg.PollInterval,
		ConverterTimeout: cfg.ConverterTimeout,
		UploadDir:        cfg.UploadDir,
		ResultsDir:       cfg.ResultsDir,
	}
	for i := range workers {
		id := fmt.Sprintf("worker_%d", i+1)
		workers[i] = NewWorker(id, store, dispatch, pub, syncPool, wc, log)
	}
	return &Pool{
		store:    store,
		dispatch: dispatch,
		pub:      pub,
		syncPool: syncPool,
		cfg:      cfg,
		log:      log,
		workers:  workers,
		reaper:   NewReaper(store, cfg.StaleCheckInterval, cfg.StaleTimeout, log),
	}
}

// Start resets orphaned claims, then starts the shared SyncPool, the
// reaper, and all workers.
func (p *Pool) Start(ctx context.Context) error {
	if err := p.tryStart(); err != nil {
		return err
	}
	n, err := p.store.ResetStartup(ctx)
	if err != nil {
		return fmt.Errorf("reset startup orphans: %w", err)
	}
	if n > 0 {
		p.log.Info("reset orphaned processing tasks at startup", "count", n)
	}

	p.syncPool.Start(ctx)

	if err := p.reaper.Start(ctx); err != nil {
		return err
	}
	for _, w := range p.workers {
		if err := w.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops every worker (each releases its current claim), then the
// reaper, then tears down the shared SyncPool. The per-stage wait is
// bounded by timeout.
func (p *Pool) Stop(timeout time.Duration) error {
	err := p.tryStop(timeout, func() internal.DoneChan {
		done := make(internal.DoneChan)
		go func() {
			defer close(done)
			var wg sync.WaitGroup
			wg.Add(len(p.workers))
			for _, w := range p.workers {
				w := w
				go func() {
					defer wg.Done()
					if err := w.Stop(timeout); err != nil {
						p.log.Warn("worker stop", "worker_id", w.id, "err", err)
					}
				}()
			}
			<-internal.Wrap(&wg)
			if err := p.reaper.Stop(timeout); err != nil {
				p.log.Warn("reaper stop", "err", err)
			}
		}()
		return done
	})
	<-p.syncPool.Stop()
	return err
}
