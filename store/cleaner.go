package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Delete implements docflow.Cleaner.
func (s *Store) Delete(ctx context.Context, id string) error {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	var res sql.Result
	err = withRetry(ctx, func() error {
		var execErr error
		res, execErr = s.db.NewDelete().Model((*taskModel)(nil)).Where("id = ?", parsedID).Exec(ctx)
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

// CleanupOlderThan implements docflow.Cleaner. It deletes every task
// created before now - days and returns the (id, result_path) of each
// removed row so the caller can unlink artifacts.
func (s *Store) CleanupOlderThan(ctx context.Context, days int) ([]CleanedTask, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var models []taskModel
	err := withRetry(ctx, func() error {
		return s.db.NewDelete().
			Model(&models).
			Where("created_at < ?", cutoff).
			Returning("*").
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	out := make([]CleanedTask, len(models))
	for i, m := range models {
		out[i] = CleanedTask{ID: m.ID.String(), ResultPath: m.ResultPath}
	}
	return out, nil
}
