package docflow

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hearthform/docflow/converter"
	"github.com/hearthform/docflow/task"
)

func TestPoolStartStopLifecycle(t *testing.T) {
	store := newWorkerTestStore(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := DefaultConfig()
	cfg.NumWorkers = 2
	cfg.UploadDir = t.TempDir()
	cfg.ResultsDir = t.TempDir()
	cfg.PollInterval = 10 * time.Millisecond
	cfg.StaleCheckInterval = 20 * time.Millisecond

	dispatch := converter.NewDispatch(&fakeConverter{markdown: "# x"}, &fakeConverter{markdown: "# x"})
	pool := NewPool(store, dispatch, nil, cfg, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pool.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(pool.workers) != 2 {
		t.Fatalf("len(workers) = %d, want 2", len(pool.workers))
	}
	if pool.workers[0].id != "worker_1" || pool.workers[1].id != "worker_2" {
		t.Errorf("worker ids = %q, %q, want worker_1, worker_2", pool.workers[0].id, pool.workers[1].id)
	}

	if err := pool.Stop(2 * time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestPoolStartResetsOrphanedProcessingTasks(t *testing.T) {
	store := newWorkerTestStore(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	orphan := &task.Task{OriginalFilename: "doc.pdf"}
	if err := store.Create(ctx, orphan); err != nil {
		t.Fatal(err)
	}
	if _, err := store.ClaimNext(ctx, "dead_worker"); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.NumWorkers = 0
	cfg.UploadDir = t.TempDir()
	cfg.ResultsDir = t.TempDir()

	dispatch := converter.NewDispatch(nil, nil)
	pool := NewPool(store, dispatch, nil, cfg, log)

	if err := pool.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer pool.Stop(2 * time.Second)

	got, err := store.Get(ctx, orphan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != task.Failed {
		t.Fatalf("Status = %v, want Failed (orphan reset at startup)", got.Status)
	}
}
