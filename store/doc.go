// Package store provides a bun-based SQL implementation of the docflow
// Store interfaces (Enqueuer, Claimer, Observer, Cleaner) backed by
// SQLite through modernc.org/sqlite.
//
// # Overview
//
// The store provides:
//
//   - durable persistence of tasks
//   - atomic claim via UPDATE ... WHERE id = (SELECT ...) RETURNING
//   - whitelisted partial updates
//   - a content-hash lookup used to short-circuit duplicate uploads
//
// # Concurrency Model
//
// ClaimNext is implemented as a single atomic UPDATE statement with a
// correlated subquery, avoiding the race between selecting a candidate and
// transitioning its state. modernc.org/sqlite's RETURNING support makes
// this possible without a BEGIN IMMEDIATE fallback; Update against a
// locked database retries with a short exponential backoff.
//
// # Schema
//
// Init creates the tasks table and its indexes if absent, then applies
// any schema migrations gated on PRAGMA user_version.
//
// # Lifecycle
//
// The caller is responsible for opening *bun.DB against a DSN that
// enables WAL mode and an adequate busy_timeout; Init itself also sets
// synchronous=NORMAL and a busy_timeout floor of 10s via PRAGMA
// statements, since those settings are per-connection and the store
// cannot assume the caller's DSN already carries them.
package store
