package service

import "errors"

var (
	// ErrNoMatches is returned by delete when the search term matched no
	// stored cards. Deleting nothing is treated as a caller mistake, not a
	// silent success.
	ErrNoMatches = errors.New("no cards matched the search term")

	// ErrWriteSupportDisabled is returned when a mutating command runs
	// without write support enabled in the configuration.
	ErrWriteSupportDisabled = errors.New("write support is disabled in configuration")

	// ErrSyncAborted wraps the cause that stopped a sync run before its
	// delta was fully applied.
	ErrSyncAborted = errors.New("sync run aborted")
)
