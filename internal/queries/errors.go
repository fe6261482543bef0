package queries

import "errors"

// Query supply errors.
var (
	// ErrNotConfigured is returned when queries or search strings are
	// requested before a target profile has been configured.
	ErrNotConfigured = errors.New("query supply not configured")

	// ErrEmptyProfile is returned when Configure is called with a profile
	// that has no organization name.
	ErrEmptyProfile = errors.New("target profile has no organization name")
)
