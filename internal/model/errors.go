package model

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSiteNotReady is returned by operations invoked before the site
	// identity has been resolved. Callers should retry once resolution
	// completes.
	ErrSiteNotReady = errors.New("site not ready")
	// ErrRemoteUnavailable marks transport-level failures of the remote
	// store, as opposed to semantic errors it answered with.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	// ErrInvalidCollection is returned for collection names outside the
	// closed descriptor set.
	ErrInvalidCollection = errors.New("unknown collection")
)
