// Package docflow provides the durable task queue and worker-pool core of a
// document-conversion service.
//
// # Overview
//
// docflow models a durable conversion queue with explicit state
// transitions. Clients (through Service) submit files; each submission
// becomes a task.Task that is persisted by a Store, claimed by one of a
// bounded set of Workers, dispatched to a converter.Converter, packaged,
// optionally published through a publish.Publisher, and made available for
// download and eventual cleanup.
//
// The package does not mandate any particular storage backend beyond the
// Store interface; the store subpackage provides a SQLite-backed
// implementation.
//
// # Delivery Semantics
//
// docflow provides at-least-once processing with idempotent side effects.
// A task may be processed more than once if a worker crashes before
// completing it, or if the reaper judges its claim stale. A failed task
// is never automatically retried: FAILED is terminal, since re-running a
// failed conversion rarely helps without operator intervention.
//
// # State Machine
//
// Tasks follow this lifecycle:
//
//	Queued     -> Processing
//	Processing -> Completed
//	Processing -> Failed
//	Processing -> Queued   (via the reaper, once processing_started exceeds StaleTimeout)
//
// Completed and Failed are terminal. A task still Processing when the
// process starts (an unclean prior shutdown) is not requeued: Pool.Start
// calls ResetStartup, which marks it Failed instead, since the claiming
// worker's in-flight state cannot be trusted to resume.
//
// # Worker
//
// Worker coordinates claiming, converting, packaging, publishing and
// persisting results for one task at a time. It:
//
//   - periodically claims the oldest eligible task from the Store
//   - rechecks the content-hash cache after claiming (a sibling worker may
//     have completed identical content first)
//   - dispatches to a converter.Converter chosen by file extension
//   - persists coarse progress milestones
//   - persists a terminal state before returning to idle
//
// # Pool & Reaper
//
// Pool supervises N Workers sharing a single Reaper, which periodically
// returns stale PROCESSING tasks to QUEUED. Exactly one Reaper exists per
// Pool. At startup the Pool resets orphaned PROCESSING tasks left by a
// prior process instance.
//
// # Concurrency Model
//
// Worker, Pool and Reaper share one lifecycle primitive (lcBase) for
// start/stop discipline; Reaper additionally uses internal.TimerTask for
// its fixed-interval sweep. Each Worker claims and drives one task at a
// time, but the synchronous CPU/I/O steps of that single task (hashing,
// packaging, publishing) run on a process-wide SyncPool, a thin
// bounded-concurrency wrapper around internal.WorkerPool, so one slow
// disk or network operation never stalls every worker's claim loop.
// Compound state transitions happen inside a single Store operation that
// is atomic at the database layer; no application logic suspends between
// reading and mutating a task's row.
package docflow
