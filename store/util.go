package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

func isAffected(res sql.Result) bool {
	rows, err := res.RowsAffected()
	if err != nil {
		return true
	}
	return rows != 0
}

func getAffected(res sql.Result) int {
	rows, err := res.RowsAffected()
	if err != nil {
		return -1
	}
	return int(rows)
}

// withRetry retries fn against "database is locked" errors with a short
// exponential backoff (100ms, 200ms, 400ms). Sqlite's own busy_timeout
// handles most contention; this is a second line of defense for the rare
// case a write still observes SQLITE_BUSY.
func withRetry(ctx context.Context, fn func() error) error {
	const maxAttempts = 3
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil || !isLockedErr(err) {
			return err
		}
		wait := 100 * time.Millisecond * time.Duration(1<<attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return err
}

func isLockedErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
