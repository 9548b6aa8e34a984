package docflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/hearthform/docflow/artifact"
	"github.com/hearthform/docflow/converter"
	"github.com/hearthform/docflow/task"
)

// EnqueueResult is the outcome of EnqueueTask: either a freshly created
// task in Queued, or an existing task matched by content hash (in which
// case Status may already be Completed).
type EnqueueResult struct {
	ID     string
	Status task.Status
}

// Result is the outcome of GetResult: the local artifact path and,
// if published, the object-store URL referencing it.
type Result struct {
	LocalPath string
	URL       string
}

// Service is the root-level façade an HTTP adapter depends on:
// EnqueueTask, GetTask, GetResult, ListPending and Stats. It owns the
// upload/result directory layout and the content-hash cache check that
// happens before a task is ever created.
type Service struct {
	store    Store
	dispatch *converter.Dispatch
	cfg      Config
	log      *slog.Logger
	sync     *SyncPool
}

// NewService builds a Service over store, using dispatch to validate
// supported formats at enqueue time and reject unsupported or ambiguous
// ZIP uploads before any task row is created. sync may be nil, in which
// case hashing runs inline on the caller's goroutine.
func NewService(store Store, dispatch *converter.Dispatch, cfg Config, log *slog.Logger, sync *SyncPool) *Service {
	return &Service{store: store, dispatch: dispatch, cfg: cfg, log: log, sync: sync}
}

// EnqueueTask stages src under <upload_dir>/<id>/<sanitized_filename>,
// computing its SHA-256 digest while streaming so large uploads are never
// buffered whole in memory, then either returns an existing Completed
// task matching that content hash or inserts a new Queued task.
//
// A single-file ZIP containing exactly one supported document is
// transparently unwrapped; zero or multiple supported documents are
// rejected with ErrNoDocument/ErrMultipleDocuments. An extension with no
// registered converter is rejected with ErrUnsupportedFormat. Either
// rejection leaves no task row and no staged files behind.
func (svc *Service) EnqueueTask(ctx context.Context, filename string, src io.Reader) (EnqueueResult, error) {
	id := uuid.NewString()
	dir := filepath.Join(svc.cfg.UploadDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return EnqueueResult{}, fmt.Errorf("create upload dir: %w", err)
	}

	name := artifact.SanitizeFilename(filename)
	stagedPath := filepath.Join(dir, name)

	var hash string
	err := svc.sync.Run(func() error {
		var stageErr error
		hash, _, stageErr = stageUpload(stagedPath, src, svc.cfg.MaxFileSize)
		return stageErr
	})
	if err != nil {
		os.RemoveAll(dir)
		if err == errOverLimit {
			return EnqueueResult{}, ErrFileTooLarge
		}
		return EnqueueResult{}, fmt.Errorf("stage upload: %w", err)
	}

	if artifact.Extension(name) == "zip" {
		unwrapped, originalName, err := artifact.UnwrapSingleDocument(stagedPath, dir, svc.dispatch.Extensions())
		if err != nil {
			os.RemoveAll(dir)
			return EnqueueResult{}, err
		}
		os.Remove(stagedPath)

		name = artifact.SanitizeFilename(originalName)
		finalPath := filepath.Join(dir, name)
		if unwrapped != finalPath {
			if err := os.Rename(unwrapped, finalPath); err != nil {
				os.RemoveAll(dir)
				return EnqueueResult{}, fmt.Errorf("finalize unwrapped document: %w", err)
			}
		}
		stagedPath = finalPath

		if err := svc.sync.Run(func() error {
			var hashErr error
			hash, hashErr = hashFile(stagedPath)
			return hashErr
		}); err != nil {
			os.RemoveAll(dir)
			return EnqueueResult{}, fmt.Errorf("hash unwrapped document: %w", err)
		}
	}

	ext := artifact.Extension(name)
	if !svc.dispatch.Supports(ext) {
		os.RemoveAll(dir)
		return EnqueueResult{}, fmt.Errorf("%s: %w", ext, ErrUnsupportedFormat)
	}

	if cached, ok := svc.cacheHit(ctx, hash); ok {
		os.RemoveAll(dir)
		return EnqueueResult{ID: cached.ID, Status: cached.Status}, nil
	}

	t := &task.Task{ID: id, OriginalFilename: name, FileHash: hash}
	if err := svc.store.Create(ctx, t); err != nil {
		os.RemoveAll(dir)
		return EnqueueResult{}, err
	}
	return EnqueueResult{ID: t.ID, Status: t.Status}, nil
}

// cacheHit reports a Completed task matching hash whose artifact still
// exists on disk. A result whose file was since removed by cleanup is
// treated as a miss.
func (svc *Service) cacheHit(ctx context.Context, hash string) (*task.Task, bool) {
	if hash == "" {
		return nil, false
	}
	cached, err := svc.store.GetByHash(ctx, hash)
	if err != nil || cached == nil {
		return nil, false
	}
	if _, err := os.Stat(cached.ResultPath); err != nil {
		return nil, false
	}
	return cached, true
}

// GetTask returns the task identified by id, or ErrNotFound.
func (svc *Service) GetTask(ctx context.Context, id string) (*task.Task, error) {
	t, err := svc.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

// GetResult returns the local path and, if published, the URL of id's
// conversion artifact. It returns ErrNotFound if no such task exists and
// ErrNotReady if the task has not yet reached Completed. On success it
// marks the task Downloaded, which is what lets ListPending know the
// result has been consumed (CleanupOlderThan goes by age alone and does
// not look at Downloaded); the marking failure
// itself is logged but does not fail the call, since the caller already
// has the result in hand.
func (svc *Service) GetResult(ctx context.Context, id string) (Result, error) {
	t, err := svc.store.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if t == nil {
		return Result{}, ErrNotFound
	}
	if t.Status != task.Completed {
		return Result{}, ErrNotReady
	}
	if err := svc.store.Update(ctx, id, Fields{FieldDownloaded: true}); err != nil {
		svc.log.Warn("mark downloaded failed", "task_id", id, "err", err)
	}
	return Result{LocalPath: t.ResultPath, URL: t.S3URL}, nil
}

// ListPending returns tasks not yet downloaded, ordered by created_at
// ascending.
func (svc *Service) ListPending(ctx context.Context) ([]*task.Task, error) {
	return svc.store.ListPending(ctx)
}

// Stats returns an aggregate snapshot of queue health.
func (svc *Service) Stats(ctx context.Context) (QueueStats, error) {
	return svc.store.Stats(ctx)
}

// Cleanup deletes task rows older than cfg.CleanupDays and unlinks their
// result artifacts and staged upload directories, returning the number of
// rows removed. Unlink failures are logged, not returned: a missing file
// is not itself an error the caller should see.
func (svc *Service) Cleanup(ctx context.Context) (int, error) {
	removed, err := svc.store.CleanupOlderThan(ctx, svc.cfg.CleanupDays)
	if err != nil {
		return 0, err
	}
	for _, r := range removed {
		if r.ResultPath != "" {
			if err := os.Remove(r.ResultPath); err != nil && !os.IsNotExist(err) {
				svc.log.Warn("cleanup: remove result artifact", "task_id", r.ID, "path", r.ResultPath, "err", err)
			}
		}
		if err := os.RemoveAll(filepath.Join(svc.cfg.UploadDir, r.ID)); err != nil {
			svc.log.Warn("cleanup: remove upload dir", "task_id", r.ID, "err", err)
		}
	}
	return len(removed), nil
}
