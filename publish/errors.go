package publish

import "errors"

// ErrPublishFailed indicates an upload to the configured object store
// failed. Callers treat this as non-fatal to task completion.
var ErrPublishFailed = errors.New("publish failed")
