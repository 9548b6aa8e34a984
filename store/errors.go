package store

import "errors"

var (
	// ErrNotFound indicates no task with the requested id exists.
	ErrNotFound = errors.New("task not found")

	// ErrDuplicateID indicates Create was called with an id that already
	// exists.
	ErrDuplicateID = errors.New("duplicate task id")

	// ErrBusy indicates a mutating operation exhausted its retry budget
	// against a locked database.
	ErrBusy = errors.New("store busy")

	// ErrConflict names the case of a conditional update that matched
	// zero rows because another actor won the race or the row was no
	// longer in the expected state. No Store method returns it: ClaimNext
	// reports a lost race as (nil, nil) and Update reports a zero-row
	// match as ErrNotFound.
	ErrConflict = errors.New("store conflict")
)
