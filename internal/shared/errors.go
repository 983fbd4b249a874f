package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Catalog and fetch errors
	ErrUpstream          = fmt.Errorf("upstream request failed")
	ErrTrackNotFound     = fmt.Errorf("track not found")
	ErrExtractionTimeout = fmt.Errorf("extraction timed out")

	// Selection errors
	ErrNoActiveSearch   = fmt.Errorf("no active search for session")
	ErrTokenOutOfRange  = fmt.Errorf("selection token out of range")
	ErrStaleSelection   = fmt.Errorf("stale selection")
	ErrInvalidSelection = fmt.Errorf("invalid selection token")

	// Transport errors
	ErrTransport = fmt.Errorf("chat transport request failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
