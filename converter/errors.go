package converter

import "errors"

var (
	// ErrUnsupportedFormat indicates the file extension has no registered
	// converter in a Dispatch table.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrConverterFailed indicates the external converter process exited
	// non-zero after filtering known-safe warnings.
	ErrConverterFailed = errors.New("converter failed")

	// ErrConverterTimeout indicates the external converter exceeded its
	// wall-clock timeout and was killed.
	ErrConverterTimeout = errors.New("converter timeout")
)
