package sync

import "errors"

var (
	// ErrAlreadyRunning is returned when a run is requested while another is
	// in progress. The request is rejected, never queued.
	ErrAlreadyRunning = errors.New("sync already running")

	// ErrStoreUnavailable wraps failures to reach or enumerate a store.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrIO wraps a failed read/write/delete of a specific file or object.
	ErrIO = errors.New("io failure")

	// ErrPersistence wraps a failure to save the baseline.
	ErrPersistence = errors.New("baseline persistence failure")
)
