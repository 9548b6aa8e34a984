package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/uptrace/bun"

	"github.com/hearthform/docflow/task"
)

// schemaVersion is the target PRAGMA user_version. Migrations below are
// applied in order until the database reaches it.
const schemaVersion = 2

func createTable(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().
		Model((*taskModel)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func createBaseIndexes(ctx context.Context, db bun.IDB) error {
	steps := []struct {
		name string
		cols []string
	}{
		{"idx_status", []string{"status"}},
		{"idx_created_at", []string{"created_at"}},
		{"idx_downloaded", []string{"downloaded"}},
		{"idx_file_hash", []string{"file_hash"}},
	}
	for _, s := range steps {
		_, err := db.NewCreateIndex().
			Model((*taskModel)(nil)).
			Index(s.name).
			Column(s.cols...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

// migrateToV2 adds the queue hot-path indexes and rewrites any legacy
// textual "pending" status (written by pre-v2 deployments that stored
// status as text) to the integer Queued value. bun already declares
// worker_id and processing_started on taskModel, so createTable handles
// new installations; ALTER TABLE only matters for a v1 database created
// before these columns existed, which the duplicate-column guard covers.
func migrateToV2(ctx context.Context, db bun.IDB) error {
	if _, err := db.ExecContext(ctx, `ALTER TABLE tasks ADD COLUMN worker_id TEXT`); err != nil && !isDuplicateColumn(err) {
		return err
	}
	if _, err := db.ExecContext(ctx, `ALTER TABLE tasks ADD COLUMN processing_started TIMESTAMP`); err != nil && !isDuplicateColumn(err) {
		return err
	}
	if _, err := db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE status = ?`, int(task.Queued), "pending"); err != nil {
		return err
	}

	// Partial index predicates must match the stored integer
	// representation of Status, or the query planner never uses them.
	indexes := []struct {
		name, where string
		cols        []string
	}{
		{"idx_queue", fmt.Sprintf("status = %d", task.Queued), []string{"status", "created_at"}},
		{"idx_worker", "worker_id IS NOT NULL", []string{"worker_id", "processing_started"}},
		{"idx_stale_tasks", fmt.Sprintf("status = %d", task.Processing), []string{"status", "processing_started"}},
	}
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model((*taskModel)(nil)).
			Index(idx.name).
			Column(idx.cols...).
			Where(idx.where).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	var current int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&current); err != nil {
		return err
	}
	if current >= schemaVersion {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if current < 2 {
		if err := migrateToV2(ctx, tx); err != nil {
			return errors.Join(err, tx.Rollback())
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `PRAGMA user_version = `+strconv.Itoa(schemaVersion))
	return err
}

func pragmas(ctx context.Context, db *bun.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=10000`,
		`PRAGMA synchronous=NORMAL`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func initDB(ctx context.Context, db *bun.DB) error {
	if err := pragmas(ctx, db); err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := createTable(ctx, tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err := createBaseIndexes(ctx, tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return runMigrations(ctx, db)
}

// Init ensures the tasks table, its indexes, and schema migrations exist.
// Init is idempotent and safe to call on every process startup.
func Init(ctx context.Context, db *bun.DB) error {
	return initDB(ctx, db)
}
