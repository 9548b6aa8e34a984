package docflow

import (
	"errors"

	"github.com/hearthform/docflow/artifact"
	"github.com/hearthform/docflow/converter"
	"github.com/hearthform/docflow/publish"
	"github.com/hearthform/docflow/store"
)

var (
	// ErrNotFound indicates that no task with the requested id exists.
	// Alias of store.ErrNotFound.
	ErrNotFound = store.ErrNotFound

	// ErrDuplicateID indicates Create was called with an id that already
	// exists in the store. Alias of store.ErrDuplicateID.
	ErrDuplicateID = store.ErrDuplicateID

	// ErrStoreBusy indicates a mutating store operation exhausted its
	// retry budget against a locked database. Alias of store.ErrBusy.
	ErrStoreBusy = store.ErrBusy

	// ErrStoreConflict names the case of a conditional update that
	// matched zero rows because another actor won the race or the task
	// was no longer in the expected state. store.Store does not return
	// it: ClaimNext reports a lost race as (nil, nil) and Update reports
	// a zero-row match as ErrNotFound. Alias of store.ErrConflict.
	ErrStoreConflict = store.ErrConflict

	// ErrUnsupportedFormat indicates the file extension has no registered
	// converter. Alias of converter.ErrUnsupportedFormat.
	ErrUnsupportedFormat = converter.ErrUnsupportedFormat

	// ErrConverterFailed indicates the external converter process exited
	// non-zero (after filtering known-safe warnings). Alias of
	// converter.ErrConverterFailed.
	ErrConverterFailed = converter.ErrConverterFailed

	// ErrConverterTimeout indicates the external converter exceeded its
	// wall-clock timeout and was killed. Alias of
	// converter.ErrConverterTimeout.
	ErrConverterTimeout = converter.ErrConverterTimeout

	// ErrPackagingFailed indicates ZIP assembly of the conversion result
	// failed.
	ErrPackagingFailed = errors.New("packaging failed")

	// ErrPublishFailed indicates the optional upload to an object store
	// failed. Workers treat this as non-fatal: the task still completes
	// with its local result_path. Alias of publish.ErrPublishFailed.
	ErrPublishFailed = publish.ErrPublishFailed

	// ErrNotReady indicates GetResult was called on a task that has not
	// yet reached a terminal state.
	ErrNotReady = errors.New("result not ready")

	// ErrFileTooLarge indicates an enqueued file exceeded MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoDocument indicates an uploaded ZIP archive contained no file
	// with a supported extension at its root. Alias of
	// artifact.ErrNoDocument.
	ErrNoDocument = artifact.ErrNoDocument

	// ErrMultipleDocuments indicates an uploaded ZIP archive contained
	// more than one supported document; only single-document archives
	// are transparently unwrapped. Alias of artifact.ErrMultipleDocuments.
	ErrMultipleDocuments = artifact.ErrMultipleDocuments
)
