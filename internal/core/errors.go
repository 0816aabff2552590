package core

import "errors"

var (
	// ErrConfig marks a run aborted before side effects because required
	// configuration is missing or inconsistent.
	ErrConfig = errors.New("missing required configuration")

	// ErrNotFound marks a reference to a backup record that does not exist.
	ErrNotFound = errors.New("backup record not found")

	// ErrMissingStorage marks a restore of a backup that never reached
	// remote storage; a local-only or incomplete backup cannot be restored
	// through this path.
	ErrMissingStorage = errors.New("backup has no remote storage object")
)
