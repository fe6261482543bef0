package config

import "errors"

// Configuration validation errors.
// Each invalid field gets its own sentinel so callers and tests can
// identify exactly what was rejected.
var (
	// ErrInvalidMaxWorkers is returned when MaxWorkers is not positive.
	ErrInvalidMaxWorkers = errors.New("max workers must be positive")

	// ErrInvalidBatchSize is returned when BatchSize is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrInvalidTimeout is returned when any network timeout is not positive.
	ErrInvalidTimeout = errors.New("timeouts must be positive")

	// ErrProbeSlowerThanFetch is returned when the liveness probe
	// timeout is not shorter than the full-fetch timeout.
	ErrProbeSlowerThanFetch = errors.New("probe timeout must be shorter than fetch timeout")

	// ErrInvalidThreshold is returned when a threshold is outside [0,1].
	ErrInvalidThreshold = errors.New("thresholds must be within [0,1]")

	// ErrInvalidGenerationRounds is returned when the round cap is not positive.
	ErrInvalidGenerationRounds = errors.New("max generation rounds must be positive")

	// ErrInvalidChunking is returned when a chunk size or count is not
	// positive, or the similarity overlap is not smaller than the window
	// (the sliding window would not advance).
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrMissingIrrelevantLabel is returned when the label set lacks
	// "irrelevant", which the fusion decision requires.
	ErrMissingIrrelevantLabel = errors.New(`classification labels must include "irrelevant"`)

	// ErrProfileNotFound is returned when the configured profile file
	// does not exist.
	ErrProfileNotFound = errors.New("target profile file not found")

	// ErrEmptyProfile is returned when a profile file contains no
	// target name.
	ErrEmptyProfile = errors.New("target profile has no name")
)
