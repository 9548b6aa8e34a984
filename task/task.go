package task

import "time"

// Task is the pivot entity of the queue: one submitted document and its
// conversion lifecycle.
type Task struct {
	ID               string
	OriginalFilename string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time

	Progress int
	Message  string

	FileHash string

	ResultPath string
	S3URL      string
	Downloaded bool

	WorkerID          string
	ProcessingStarted *time.Time
}

// IsClaimed reports whether the task is currently held by a worker.
func (t *Task) IsClaimed() bool {
	return t.Status == Processing && t.WorkerID != ""
}

// Terminal reports whether the task has reached a state from which it will
// not be automatically retried.
func (t *Task) Terminal() bool {
	return t.Status == Completed || t.Status == Failed
}
