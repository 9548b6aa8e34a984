// Package task defines Task and Status, the durable records managed by the
// docflow queue.
//
// A Task is created in Queued, claimed into Processing by exactly one
// worker, and finishes in Completed or Failed. The reaper may return a
// stale Processing task to Queued. Task values returned by a Store are
// authoritative snapshots; callers must not mutate them and expect the
// change to persist.
package task
