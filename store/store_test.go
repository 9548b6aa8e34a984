package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	gstore "github.com/hearthform/docflow/store"
	"github.com/hearthform/docflow/task"
)

func TestCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	s := gstore.New(db)
	ctx := context.Background()

	tk := &task.Task{OriginalFilename: "report.pdf", FileHash: "h1"}
	if err := s.Create(ctx, tk); err != nil {
		t.Fatal(err)
	}
	if tk.ID == "" {
		t.Fatal("expected generated id")
	}
	if tk.Status != task.Queued {
		t.Fatalf("status = %v, want Queued", tk.Status)
	}

	got, err := s.Get(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected task, got nil")
	}
	if got.OriginalFilename != "report.pdf" {
		t.Errorf("OriginalFilename = %q", got.OriginalFilename)
	}
}

func TestGetMissing(t *testing.T) {
	db := newTestDB(t)
	s := gstore.New(db)
	ctx := context.Background()

	got, err := s.Get(ctx, "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("expected nil for missing id")
	}
}

func TestCreateDuplicateID(t *testing.T) {
	db := newTestDB(t)
	s := gstore.New(db)
	ctx := context.Background()

	tk := &task.Task{ID: "11111111-1111-1111-1111-111111111111", OriginalFilename: "a.pdf"}
	if err := s.Create(ctx, tk); err != nil {
		t.Fatal(err)
	}
	dup := &task.Task{ID: "11111111-1111-1111-1111-111111111111", OriginalFilename: "b.pdf"}
	err := s.Create(ctx, dup)
	if !errors.Is(err, gstore.ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
}

// TestClaimNextTwoWorkersOneTask exercises S1: two workers racing to
// claim a single task must never both win.
func TestClaimNextTwoWorkersOneTask(t *testing.T) {
	db := newTestDB(t)
	s := gstore.New(db)
	ctx := context.Background()

	tk := &task.Task{OriginalFilename: "only.pdf"}
	if err := s.Create(ctx, tk); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]*task.Task, 2)
	errs := make([]error, 2)
	workers := []string{"w1", "w2"}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.ClaimNext(ctx, workers[i])
		}(i)
	}
	wg.Wait()

	wins := 0
	var winner string
	for i, r := range results {
		if errs[i] != nil {
			t.Fatalf("ClaimNext[%d]: %v", i, errs[i])
		}
		if r != nil {
			wins++
			winner = workers[i]
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}

	got, err := s.Get(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != task.Processing {
		t.Errorf("status = %v, want Processing", got.Status)
	}
	if got.WorkerID != winner {
		t.Errorf("worker_id = %q, want %q", got.WorkerID, winner)
	}
	if got.ProcessingStarted == nil {
		t.Fatal("processing_started not set")
	}
}

func TestClaimNextEmpty(t *testing.T) {
	db := newTestDB(t)
	s := gstore.New(db)
	ctx := context.Background()

	got, err := s.ClaimNext(ctx, "w1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("expected nil claim from empty queue")
	}
}

// TestReleaseStale exercises S2.
func TestReleaseStale(t *testing.T) {
	db := newTestDB(t)
	s := gstore.New(db)
	ctx := context.Background()

	tk := &task.Task{OriginalFilename: "stuck.pdf"}
	if err := s.Create(ctx, tk); err != nil {
		t.Fatal(err)
	}
	claimed, err := s.ClaimNext(ctx, "w1")
	if err != nil || claimed == nil {
		t.Fatalf("claim: %v %v", claimed, err)
	}

	stale := time.Now().Add(-600 * time.Second)
	if err := s.Update(ctx, claimed.ID, gstore.Fields{"processing_started": stale}); err != nil {
		t.Fatal(err)
	}

	n, err := s.ReleaseStale(ctx, 300*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("released = %d, want 1", n)
	}

	got, err := s.Get(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != task.Queued {
		t.Errorf("status = %v, want Queued", got.Status)
	}
	if got.WorkerID != "" {
		t.Errorf("worker_id = %q, want empty", got.WorkerID)
	}
	if got.ProcessingStarted != nil {
		t.Error("processing_started not cleared")
	}
}

// TestResetStartup exercises S3: Processing rows from a prior process
// instance are marked Failed with a diagnostic message; Queued rows are
// untouched.
func TestResetStartup(t *testing.T) {
	db := newTestDB(t)
	s := gstore.New(db)
	ctx := context.Background()

	a := &task.Task{OriginalFilename: "a.pdf"}
	b := &task.Task{OriginalFilename: "b.pdf"}
	c := &task.Task{OriginalFilename: "c.pdf"}
	for _, tk := range []*task.Task{a, b, c} {
		if err := s.Create(ctx, tk); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.ClaimNext(ctx, "w1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ClaimNext(ctx, "w2"); err != nil {
		t.Fatal(err)
	}
	// c is left Queued.

	n, err := s.ResetStartup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("reset = %d, want 2", n)
	}

	for _, tk := range []*task.Task{a, b} {
		got, err := s.Get(ctx, tk.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != task.Failed {
			t.Errorf("task %s status = %v, want Failed", tk.ID, got.Status)
		}
		if got.Message != "server restarted" {
			t.Errorf("task %s message = %q, want %q", tk.ID, got.Message, "server restarted")
		}
	}

	got, err := s.Get(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != task.Queued {
		t.Errorf("c status = %v, want Queued (untouched)", got.Status)
	}
}

// TestClaimOrderingFIFO exercises S6.
func TestClaimOrderingFIFO(t *testing.T) {
	db := newTestDB(t)
	s := gstore.New(db)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		tk := &task.Task{OriginalFilename: "f.pdf"}
		if err := s.Create(ctx, tk); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, tk.ID)
		time.Sleep(2 * time.Millisecond)
	}

	for _, want := range ids {
		got, err := s.ClaimNext(ctx, "w")
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != want {
			t.Fatalf("claimed %s, want %s (FIFO order)", got.ID, want)
		}
	}
}

func TestUpdateUnknownFieldsDropped(t *testing.T) {
	db := newTestDB(t)
	s := gstore.New(db)
	ctx := context.Background()

	tk := &task.Task{OriginalFilename: "x.pdf"}
	if err := s.Create(ctx, tk); err != nil {
		t.Fatal(err)
	}
	err := s.Update(ctx, tk.ID, gstore.Fields{
		"progress":     50,
		"id":           "ignored",
		"created_at":   time.Now(),
		"garbage_col;": "drop table tasks",
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Progress != 50 {
		t.Errorf("progress = %d, want 50", got.Progress)
	}
}

func TestGetByHashReturnsMostRecentCompleted(t *testing.T) {
	db := newTestDB(t)
	s := gstore.New(db)
	ctx := context.Background()

	older := &task.Task{OriginalFilename: "a.pdf", FileHash: "same"}
	if err := s.Create(ctx, older); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, older.ID, gstore.Fields{"status": task.Completed, "result_path": "/r/old.zip"}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)

	newer := &task.Task{OriginalFilename: "a.pdf", FileHash: "same"}
	if err := s.Create(ctx, newer); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, newer.ID, gstore.Fields{"status": task.Completed, "result_path": "/r/new.zip"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetByHash(ctx, "same")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != newer.ID {
		t.Fatalf("GetByHash returned %s, want most recent %s", got.ID, newer.ID)
	}
}

func TestCleanupOlderThan(t *testing.T) {
	db := newTestDB(t)
	s := gstore.New(db)
	ctx := context.Background()

	tk := &task.Task{OriginalFilename: "old.pdf"}
	if err := s.Create(ctx, tk); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, tk.ID, gstore.Fields{"status": task.Completed, "result_path": "/r/old.zip"}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE tasks SET created_at = datetime('now', '-10 days')`); err != nil {
		t.Fatal(err)
	}

	cleaned, err := s.CleanupOlderThan(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(cleaned) != 1 || cleaned[0].ID != tk.ID {
		t.Fatalf("cleaned = %+v, want one row for %s", cleaned, tk.ID)
	}

	got, err := s.Get(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("expected row removed")
	}
}

func TestStats(t *testing.T) {
	db := newTestDB(t)
	s := gstore.New(db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		tk := &task.Task{OriginalFilename: "q.pdf"}
		if err := s.Create(ctx, tk); err != nil {
			t.Fatal(err)
		}
	}
	done := &task.Task{OriginalFilename: "d.pdf"}
	if err := s.Create(ctx, done); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, done.ID, gstore.Fields{"status": task.Completed}); err != nil {
		t.Fatal(err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Queued != 2 {
		t.Errorf("Queued = %d, want 2", stats.Queued)
	}
	if stats.Completed != 1 {
		t.Errorf("Completed = %d, want 1", stats.Completed)
	}
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
}

func TestInitIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// newTestDB already ran Init once; a second run must be a no-op.
	if err := gstore.Init(ctx, db); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	var version int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != 2 {
		t.Fatalf("user_version = %d, want 2", version)
	}

	s := gstore.New(db)
	tk := &task.Task{OriginalFilename: "after.pdf"}
	if err := s.Create(ctx, tk); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateEmptyFieldsBumpsUpdatedAt(t *testing.T) {
	db := newTestDB(t)
	s := gstore.New(db)
	ctx := context.Background()

	tk := &task.Task{OriginalFilename: "x.pdf"}
	if err := s.Create(ctx, tk); err != nil {
		t.Fatal(err)
	}
	before, err := s.Get(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	if err := s.Update(ctx, tk.ID, gstore.Fields{"not_a_column": 1}); err != nil {
		t.Fatal(err)
	}
	after, err := s.Get(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("UpdatedAt not bumped: before %v, after %v", before.UpdatedAt, after.UpdatedAt)
	}
	if after.Status != before.Status || after.Progress != before.Progress || after.Message != before.Message {
		t.Error("expected data fields unchanged")
	}
}

func TestClaimThenReleaseRestoresQueuedState(t *testing.T) {
	db := newTestDB(t)
	s := gstore.New(db)
	ctx := context.Background()

	tk := &task.Task{OriginalFilename: "roundtrip.pdf", FileHash: "h"}
	if err := s.Create(ctx, tk); err != nil {
		t.Fatal(err)
	}
	before, err := s.Get(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}

	claimed, err := s.ClaimNext(ctx, "w1")
	if err != nil || claimed == nil {
		t.Fatalf("claim: %v %v", claimed, err)
	}
	if err := s.Update(ctx, tk.ID, gstore.Fields{
		"status":             task.Queued,
		"worker_id":          "",
		"processing_started": (*time.Time)(nil),
	}); err != nil {
		t.Fatal(err)
	}

	after, err := s.Get(ctx, tk.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.Status != task.Queued {
		t.Errorf("status = %v, want Queued", after.Status)
	}
	if after.WorkerID != "" {
		t.Errorf("worker_id = %q, want empty", after.WorkerID)
	}
	if after.ProcessingStarted != nil {
		t.Error("processing_started not cleared")
	}
	if !after.CreatedAt.Equal(before.CreatedAt) || after.FileHash != before.FileHash || after.Progress != before.Progress {
		t.Error("release changed fields beyond the claim set")
	}
}
