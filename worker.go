package docflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hearthform/docflow/artifact"
	"github.com/hearthform/docflow/converter"
	"github.com/hearthform/docflow/internal"
	"github.com/hearthform/docflow/metrics"
	"github.com/hearthform/docflow/publish"
	"github.com/hearthform/docflow/task"
)

// WorkerConfig defines the runtime behavior of a single Worker.
type WorkerConfig struct {
	PollInterval     time.Duration
	ConverterTimeout time.Duration
	UploadDir        string
	ResultsDir       string
}

// Worker claims one task at a time from a Store and drives it through
// the conversion pipeline: cache recheck, convert, package, publish,
// persist. A Worker is strictly single-tasked: it holds at most one
// claim and runs it to completion before claiming again.
type Worker struct {
	lcBase

	id       string
	store    Store
	dispatch *converter.Dispatch
	pub      publish.Publisher
	sync     *SyncPool
	cfg      WorkerConfig
	log      *slog.Logger

	stopCh chan struct{}
	doneCh internal.DoneChan
}

// NewWorker constructs a Worker identified by id. pub and sync may be
// nil: publishing is then skipped entirely, and the synchronous helpers
// (hashing, packaging) run inline on the Worker's own goroutine.
func NewWorker(id string, store Store, dispatch *converter.Dispatch, pub publish.Publisher, sync *SyncPool, cfg WorkerConfig, log *slog.Logger) *Worker {
	return &Worker{
		id:       id,
		store:    store,
		dispatch: dispatch,
		pub:      pub,
		sync:     sync,
		cfg:      cfg,
		log:      log.With("worker_id", id),
	}
}

// Start begins the claim loop in a background goroutine.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.tryStart(); err != nil {
		return err
	}
	w.stopCh = make(chan struct{})
	w.doneCh = make(internal.DoneChan)
	go w.run(ctx)
	return nil
}

// Stop signals the worker to exit its loop after its current claim, if
// any, reaches a terminal state or is released back to Queued. Stop does
// not interrupt a task mid-step: killing an external subprocess
// mid-conversion can leave an office suite profile corrupt, so the worker
// finishes whichever of convert/package/publish it is already running.
// Between steps, though, a pending Stop takes priority over continuing
// the pipeline: the task is released to Queued instead, so another
// worker can pick it up rather than waiting a full stale_timeout. A
// worker that dies without a graceful Stop leaves its claim for the
// reaper to reclaim.
func (w *Worker) Stop(timeout time.Duration) error {
	return w.tryStop(timeout, func() internal.DoneChan {
		close(w.stopCh)
		return w.doneCh
	})
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		default:
		}

		t, err := w.store.ClaimNext(ctx, w.id)
		if err != nil {
			w.log.Error("claim failed", "err", err)
			t = nil
		}
		if t == nil {
			select {
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			case <-time.After(w.cfg.PollInterval):
			}
			continue
		}
		metrics.TasksClaimed.Inc()
		metrics.ActiveWorkers.Inc()

		w.process(ctx, t)
		metrics.ActiveWorkers.Dec()
	}
}

// stopping reports whether the worker has been asked to stop, either by
// an explicit Stop call or by cancellation of the context it was started
// with.
func (w *Worker) stopping(ctx context.Context) bool {
	select {
	case <-w.stopCh:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (w *Worker) process(ctx context.Context, t *task.Task) {
	w.log.Info("claimed task", "task_id", t.ID, "file", t.OriginalFilename)

	if t.FileHash == "" {
		var hash string
		err := w.sync.Run(func() error {
			var hashErr error
			hash, hashErr = hashFile(w.inputPath(t))
			return hashErr
		})
		if err != nil {
			w.fail(ctx, t, "", fmt.Sprintf("hash derivation failed: %v", err))
			return
		}
		t.FileHash = hash
		_ = w.store.Update(ctx, t.ID, Fields{FieldFileHash: hash})
	}

	if cached, ok := w.recheckCache(ctx, t); ok {
		metrics.CacheHits.Inc()
		w.complete(ctx, t, cached.ResultPath, cached.S3URL, "used cached result")
		return
	}

	if w.stopping(ctx) {
		w.release(ctx, t, "released: worker stopping")
		return
	}

	ext := extensionOf(t.OriginalFilename)
	conv, err := w.dispatch.For(ext)
	if err != nil {
		w.fail(ctx, t, "", fmt.Sprintf("unsupported format: %s", ext))
		return
	}

	outDir := filepath.Join(w.cfg.ResultsDir, t.ID)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		w.fail(ctx, t, "", fmt.Sprintf("create output dir: %v", err))
		return
	}
	w.progress(ctx, t, 30, "conversion started")

	convCtx, cancel := context.WithTimeout(ctx, w.cfg.ConverterTimeout)
	timer := metrics.NewTimer()
	result, err := conv.Convert(convCtx, w.inputPath(t), outDir)
	timer.ObserveDurationVec(metrics.ConversionDuration, ext)
	cancel()
	if err != nil {
		w.fail(ctx, t, outDir, conversionFailureMessage(err))
		return
	}

	if w.stopping(ctx) {
		w.releaseCleanup(ctx, t, outDir, "released: worker stopping")
		return
	}
	w.progress(ctx, t, 70, "packaging")

	zipPath := filepath.Join(outDir, resultZipName(t.OriginalFilename, ext))
	err = w.sync.Run(func() error {
		return artifact.Pack(result.MarkdownPath, result.ImagesDir, zipPath)
	})
	if err != nil {
		w.fail(ctx, t, outDir, fmt.Sprintf("packaging failed: %v", err))
		return
	}

	if w.stopping(ctx) {
		w.releaseCleanup(ctx, t, outDir, "released: worker stopping")
		return
	}

	s3URL := ""
	if w.pub != nil {
		var url string
		err := w.sync.Run(func() error {
			var pubErr error
			url, pubErr = w.pub.Publish(ctx, zipPath, t.OriginalFilename, t.ID)
			return pubErr
		})
		if err != nil {
			metrics.PublishFailures.Inc()
			w.log.Warn("publish failed, continuing with local result", "task_id", t.ID, "err", err)
		} else {
			s3URL = url
		}
	}

	w.complete(ctx, t, zipPath, s3URL, "done")
}

// recheckCache looks for a completed task with the same content hash
// whose artifact still exists on disk. A sibling worker may have
// finished converting identical bytes between enqueue and this claim.
func (w *Worker) recheckCache(ctx context.Context, t *task.Task) (*task.Task, bool) {
	if t.FileHash == "" {
		return nil, false
	}
	cached, err := w.store.GetByHash(ctx, t.FileHash)
	if err != nil || cached == nil || cached.ID == t.ID {
		return nil, false
	}
	if _, err := os.Stat(cached.ResultPath); err != nil {
		return nil, false
	}
	return cached, true
}

func (w *Worker) inputPath(t *task.Task) string {
	return filepath.Join(w.cfg.UploadDir, t.ID, t.OriginalFilename)
}

func (w *Worker) progress(ctx context.Context, t *task.Task, pct int, msg string) {
	if err := w.store.Update(ctx, t.ID, Fields{FieldProgress: pct, FieldMessage: msg}); err != nil {
		w.log.Warn("progress update failed", "task_id", t.ID, "err", err)
	}
}

func (w *Worker) complete(ctx context.Context, t *task.Task, resultPath, s3URL, msg string) {
	fields := Fields{
		FieldStatus:            task.Completed,
		FieldProgress:          100,
		FieldResultPath:        resultPath,
		FieldMessage:           msg,
		FieldWorkerID:          "",
		FieldProcessingStarted: (*time.Time)(nil),
	}
	if s3URL != "" {
		fields[FieldS3URL] = s3URL
	}
	if err := w.store.Update(ctx, t.ID, fields); err != nil {
		w.log.Error("completion update failed", "task_id", t.ID, "err", err)
		return
	}
	metrics.TasksCompleted.WithLabelValues("completed").Inc()
	w.log.Info("task completed", "task_id", t.ID)
}

// fail persists a terminal Failed state and removes any partial artifact
// directory this attempt created. outDir is empty if failure occurred
// before an output directory existed.
func (w *Worker) fail(ctx context.Context, t *task.Task, outDir, msg string) {
	if outDir != "" {
		if err := os.RemoveAll(outDir); err != nil {
			w.log.Warn("cleanup partial artifact failed", "task_id", t.ID, "dir", outDir, "err", err)
		}
	}
	if err := w.store.Update(ctx, t.ID, Fields{
		FieldStatus:            task.Failed,
		FieldProgress:          0,
		FieldMessage:           msg,
		FieldWorkerID:          "",
		FieldProcessingStarted: (*time.Time)(nil),
	}); err != nil {
		w.log.Error("failure update failed", "task_id", t.ID, "err", err)
		return
	}
	metrics.TasksCompleted.WithLabelValues("failed").Inc()
	w.log.Warn("task failed", "task_id", t.ID, "reason", msg)
}

// release returns t to Queued without marking it Failed or Completed:
// used when the worker is asked to stop between pipeline steps, so
// another worker can pick the task back up instead of waiting out a full
// stale_timeout for the reaper to notice.
func (w *Worker) release(ctx context.Context, t *task.Task, msg string) {
	if err := w.store.Update(ctx, t.ID, Fields{
		FieldStatus:            task.Queued,
		FieldWorkerID:          "",
		FieldProcessingStarted: (*time.Time)(nil),
		FieldMessage:           msg,
	}); err != nil {
		w.log.Error("release update failed", "task_id", t.ID, "err", err)
		return
	}
	w.log.Info("released claim back to queue", "task_id", t.ID)
}

func (w *Worker) releaseCleanup(ctx context.Context, t *task.Task, outDir, msg string) {
	if err := os.RemoveAll(outDir); err != nil {
		w.log.Warn("cleanup partial artifact failed", "task_id", t.ID, "dir", outDir, "err", err)
	}
	w.release(ctx, t, msg)
}

func conversionFailureMessage(err error) string {
	switch {
	case errors.Is(err, converter.ErrConverterTimeout):
		return "conversion timed out"
	case errors.Is(err, converter.ErrConverterFailed):
		return "conversion failed: " + err.Error()
	default:
		return err.Error()
	}
}

func extensionOf(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

func resultZipName(originalFilename, ext string) string {
	stem := strings.TrimSuffix(filepath.Base(originalFilename), filepath.Ext(originalFilename))
	return fmt.Sprintf("%s_%s_result.zip", stem, ext)
}
