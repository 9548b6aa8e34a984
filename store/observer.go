package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hearthform/docflow/task"
)

// QueueStats is a point-in-time aggregate summary of the tasks table.
type QueueStats struct {
	Queued     int
	Processing int
	Completed  int
	Failed     int
	Total      int

	ActiveWorkers     int
	CompletedLastHour int
	AvgProcessingTime time.Duration
}

// CleanedTask identifies a row removed by CleanupOlderThan along with the
// artifact path the caller should unlink.
type CleanedTask struct {
	ID         string
	ResultPath string
}

// Get implements docflow.Observer. It returns (nil, nil) if id does not
// exist or does not parse as a task id.
func (s *Store) Get(ctx context.Context, id string) (*task.Task, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	var m taskModel
	err = s.db.NewSelect().Model(&m).Where("id = ?", parsedID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m.toTask(), nil
}

// GetByHash implements docflow.Observer. It returns the most recently
// created task.Completed row matching hash, or (nil, nil) if none exists.
func (s *Store) GetByHash(ctx context.Context, hash string) (*task.Task, error) {
	var m taskModel
	err := s.db.NewSelect().
		Model(&m).
		Where("file_hash = ?", hash).
		Where("status = ?", task.Completed).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m.toTask(), nil
}

// ListPending implements docflow.Observer. It returns every task not yet
// fetched by a consumer (downloaded = false), regardless of status: a
// Completed or Failed task remains "pending" from a download/cleanup
// perspective until a caller has retrieved its result. Results are
// ordered by created_at ascending.
func (s *Store) ListPending(ctx context.Context) ([]*task.Task, error) {
	var models []taskModel
	err := s.db.NewSelect().
		Model(&models).
		Where("downloaded = ?", false).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*task.Task, len(models))
	for i := range models {
		out[i] = models[i].toTask()
	}
	return out, nil
}

type statusCount struct {
	Status task.Status `bun:"status"`
	N      int         `bun:"n"`
}

// Stats implements docflow.Observer.
func (s *Store) Stats(ctx context.Context) (QueueStats, error) {
	var counts []statusCount
	err := s.db.NewSelect().
		Model((*taskModel)(nil)).
		ColumnExpr("status").
		ColumnExpr("count(*) AS n").
		Group("status").
		Scan(ctx, &counts)
	if err != nil {
		return QueueStats{}, err
	}

	var stats QueueStats
	for _, c := range counts {
		stats.Total += c.N
		switch c.Status {
		case task.Queued:
			stats.Queued = c.N
		case task.Processing:
			stats.Processing = c.N
		case task.Completed:
			stats.Completed = c.N
		case task.Failed:
			stats.Failed = c.N
		}
	}

	if err := s.db.NewSelect().
		Model((*taskModel)(nil)).
		ColumnExpr("count(DISTINCT worker_id)").
		Where("status = ?", task.Processing).
		Scan(ctx, &stats.ActiveWorkers); err != nil {
		return QueueStats{}, err
	}

	hourAgo := time.Now().Add(-time.Hour)
	if err := s.db.NewSelect().
		Model((*taskModel)(nil)).
		ColumnExpr("count(*)").
		Where("status = ?", task.Completed).
		Where("updated_at >= ?", hourAgo).
		Scan(ctx, &stats.CompletedLastHour); err != nil {
		return QueueStats{}, err
	}

	var avgSeconds sql.NullFloat64
	err = s.db.NewSelect().
		Model((*taskModel)(nil)).
		ColumnExpr("avg((julianday(updated_at) - julianday(processing_started)) * 86400.0)").
		Where("status = ?", task.Completed).
		Where("updated_at >= ?", hourAgo).
		Where("processing_started IS NOT NULL").
		Scan(ctx, &avgSeconds)
	if err != nil {
		return QueueStats{}, err
	}
	if avgSeconds.Valid {
		stats.AvgProcessingTime = time.Duration(avgSeconds.Float64 * float64(time.Second))
	}

	return stats, nil
}
