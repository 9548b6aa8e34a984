package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hearthform/docflow/task"
)

// Fields is a partial update whose keys must be field-name constants
// declared in the root docflow package (FieldStatus, FieldMessage, ...).
// Update silently drops any key it does not recognize.
type Fields map[string]any

var whitelistedColumns = map[string]string{
	"status":             "status",
	"message":            "message",
	"progress":           "progress",
	"result_path":        "result_path",
	"s3_url":             "s3_url",
	"downloaded":         "downloaded",
	"worker_id":          "worker_id",
	"processing_started": "processing_started",
	"file_hash":          "file_hash",
}

// ClaimNext implements docflow.Claimer. It atomically transitions the
// oldest task.Queued row to task.Processing and assigns workerID,
// returning the updated snapshot. Returns (nil, nil) if no task is
// eligible.
//
// ClaimNext relies on a single UPDATE ... WHERE id = (subquery)
// statement with RETURNING to avoid race conditions between selection
// and state transition: two concurrent claimants on the same head both
// attempt the update and at most one matches a row.
func (s *Store) ClaimNext(ctx context.Context, workerID string) (*task.Task, error) {
	now := time.Now()
	subQuery := s.db.NewSelect().
		Model((*taskModel)(nil)).
		Column("id").
		Where("status = ?", task.Queued).
		Order("created_at ASC", "id ASC").
		Limit(1)

	var m taskModel
	err := withRetry(ctx, func() error {
		return s.db.NewUpdate().
			Model((*taskModel)(nil)).
			Set("status = ?", task.Processing).
			Set("worker_id = ?", workerID).
			Set("processing_started = ?", now).
			Set("updated_at = ?", now).
			Where("id = (?)", subQuery).
			Returning("*").
			Scan(ctx, &m)
	})
	if err != nil {
		if isLockedErr(err) {
			return nil, ErrBusy
		}
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return m.toTask(), nil
}

// Update implements docflow.Claimer. Unknown keys in fields are dropped.
// updated_at is always bumped, even when every key was dropped. An empty
// worker_id value is stored as NULL so a released row is
// indistinguishable from one that was never claimed.
func (s *Store) Update(ctx context.Context, id string, fields Fields) error {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}

	q := s.db.NewUpdate().Model((*taskModel)(nil)).Where("id = ?", parsedID)
	for k, v := range fields {
		col, ok := whitelistedColumns[k]
		if !ok {
			continue
		}
		if col == "worker_id" {
			if wid, ok := v.(string); ok && wid == "" {
				v = nil
			}
		}
		q = q.Set(fmt.Sprintf("%s = ?", col), v)
	}
	q = q.Set("updated_at = ?", time.Now())

	var res sql.Result
	err = withRetry(ctx, func() error {
		var execErr error
		res, execErr = q.Exec(ctx)
		return execErr
	})
	if err != nil {
		if isLockedErr(err) {
			return ErrBusy
		}
		return err
	}
	if !isAffected(res) {
		return ErrNotFound
	}
	return nil
}

// ReleaseStale implements docflow.Claimer. Tasks stuck in
// task.Processing for longer than timeout are returned to task.Queued. A
// timeout of zero or negative releases every currently-processing task.
func (s *Store) ReleaseStale(ctx context.Context, timeout time.Duration) (int, error) {
	var n int
	err := withRetry(ctx, func() error {
		q := s.db.NewUpdate().
			Model((*taskModel)(nil)).
			Set("status = ?", task.Queued).
			Set("worker_id = NULL").
			Set("processing_started = NULL").
			Set("message = ?", "released after exceeding stale timeout").
			Set("updated_at = ?", time.Now()).
			Where("status = ?", task.Processing)
		if timeout > 0 {
			q = q.Where("processing_started < ?", time.Now().Add(-timeout))
		}
		res, err := q.Exec(ctx)
		if err != nil {
			return err
		}
		n = getAffected(res)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ResetStartup implements docflow.Claimer. Unlike ReleaseStale, which
// returns hung claims to Queued for another worker to retry, ResetStartup
// marks every task.Processing row Failed with a "server restarted"
// message: a task still Processing when the process starts was claimed
// by an instance that no longer exists, so its conversion state (partial
// subprocess output, office suite profile) cannot be trusted to resume
// cleanly. Called once, before any worker begins claiming.
func (s *Store) ResetStartup(ctx context.Context) (int, error) {
	var n int
	err := withRetry(ctx, func() error {
		res, err := s.db.NewUpdate().
			Model((*taskModel)(nil)).
			Set("status = ?", task.Failed).
			Set("message = ?", "server restarted").
			Set("worker_id = NULL").
			Set("processing_started = NULL").
			Set("updated_at = ?", time.Now()).
			Where("status = ?", task.Processing).
			Exec(ctx)
		if err != nil {
			return err
		}
		n = getAffected(res)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
