package store

import "github.com/uptrace/bun"

// Store is a SQL-backed implementation of docflow.Store. A single Store
// value satisfies Enqueuer, Claimer, Observer, and Cleaner; the
// segregated interfaces exist so callers can depend on only the
// capability they need.
type Store struct {
	db *bun.DB
}

// New wraps an already-configured *bun.DB. Call Init before first use.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}
