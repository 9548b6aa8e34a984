package docflow

import (
	"context"
	"time"

	"github.com/hearthform/docflow/store"
	"github.com/hearthform/docflow/task"
)

// Fields is a whitelisted partial update applied by Claimer.Update.
//
// Only the keys documented on Update are honored; unknown keys are
// silently dropped by the implementation (defence against accidental
// injection of arbitrary columns from caller-constructed maps). Alias of
// store.Fields, so any store.Store implementation satisfies Claimer
// directly.
type Fields = store.Fields

// Whitelisted field names accepted by Claimer.Update.
const (
	FieldStatus            = "status"
	FieldMessage           = "message"
	FieldProgress          = "progress"
	FieldResultPath        = "result_path"
	FieldS3URL             = "s3_url"
	FieldDownloaded        = "downloaded"
	FieldWorkerID          = "worker_id"
	FieldProcessingStarted = "processing_started"
	FieldFileHash          = "file_hash"
)

// Enqueuer inserts new tasks into the store.
type Enqueuer interface {
	// Create inserts t in status Queued. Fails with ErrDuplicateID if
	// t.ID collides with an existing row.
	Create(ctx context.Context, t *task.Task) error
}

// Claimer implements the atomic claim/release lifecycle that lets
// competing workers share a queue safely.
type Claimer interface {
	// ClaimNext atomically selects the oldest Queued task, transitions it
	// to Processing with the given workerID and processingStarted = now,
	// and returns the updated record. Returns (nil, nil) if no task is
	// eligible.
	ClaimNext(ctx context.Context, workerID string) (*task.Task, error)

	// Update applies a whitelisted partial update to the task identified
	// by id. Always bumps updated_at, even if the whitelist intersection
	// is empty.
	Update(ctx context.Context, id string, fields Fields) error

	// ReleaseStale resets to Queued every Processing task whose
	// processing_started is older than timeout. A timeout of zero
	// releases every currently Processing task. Returns the count
	// affected.
	ReleaseStale(ctx context.Context, timeout time.Duration) (int, error)

	// ResetStartup marks every task left in Processing by a prior process
	// instance as Failed, with message "server restarted": such a claim's
	// conversion state cannot be trusted to resume cleanly. Unlike
	// ReleaseStale, it does not return rows to Queued. Returns the count
	// affected. Must be called once, before any worker starts claiming.
	ResetStartup(ctx context.Context) (int, error)
}

// Observer provides read-only access to task state.
type Observer interface {
	// Get returns the task identified by id, or (nil, nil) if it does
	// not exist.
	Get(ctx context.Context, id string) (*task.Task, error)

	// GetByHash returns the most recently created Completed task whose
	// file_hash matches, or (nil, nil) if none exists.
	GetByHash(ctx context.Context, hash string) (*task.Task, error)

	// ListPending returns every task not yet downloaded (Downloaded ==
	// false), regardless of status, ordered by created_at ascending.
	ListPending(ctx context.Context) ([]*task.Task, error)

	// Stats returns an aggregate snapshot of queue health.
	Stats(ctx context.Context) (QueueStats, error)
}

// Cleaner removes task rows from the store.
type Cleaner interface {
	// Delete removes the row identified by id.
	Delete(ctx context.Context, id string) error

	// CleanupOlderThan deletes rows created before now - days and returns
	// their (id, result_path) pairs so the caller can unlink artifacts.
	CleanupOlderThan(ctx context.Context, days int) ([]CleanedTask, error)
}

// CleanedTask identifies an artifact orphaned by CleanupOlderThan. Alias
// of store.CleanedTask.
type CleanedTask = store.CleanedTask

// QueueStats is a single-query aggregate snapshot of queue health. Alias
// of store.QueueStats.
type QueueStats = store.QueueStats

// Store is the full Task Store contract: durable persistence and atomic
// state transitions. A concrete Store (such as *store.Store) implements
// Enqueuer, Claimer, Observer and Cleaner directly, so Worker, Pool and
// Service can each depend on only the slice they need.
type Store interface {
	Enqueuer
	Claimer
	Observer
	Cleaner
}
