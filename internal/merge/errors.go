package merge

import "errors"

// Common merge errors.
var (
	// ErrUnknownView is returned when a merge is requested for a view id
	// that is not present in the source index.
	ErrUnknownView = errors.New("view not found in source model")
)
