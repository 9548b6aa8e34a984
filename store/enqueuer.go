package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/hearthform/docflow/task"
)

// Create implements docflow.Enqueuer. It inserts t in task.Queued state.
func (s *Store) Create(ctx context.Context, t *task.Task) error {
	model, err := fromTask(t)
	if err != nil {
		return fmt.Errorf("invalid task id: %w", err)
	}
	err = withRetry(ctx, func() error {
		_, err := s.db.NewInsert().Model(model).Exec(ctx)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create %s: %w", model.ID, ErrDuplicateID)
		}
		if isLockedErr(err) {
			return fmt.Errorf("create %s: %w", model.ID, ErrBusy)
		}
		return err
	}
	t.ID = model.ID.String()
	t.Status = model.Status
	t.CreatedAt = model.CreatedAt
	t.UpdatedAt = model.UpdatedAt
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
