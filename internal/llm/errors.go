package llm

import "errors"

// LLM client errors.
var (
	// ErrEmptyResponse is returned when the model replies with no choices
	// or an empty message.
	ErrEmptyResponse = errors.New("empty response from generation endpoint")

	// ErrMissingEndpoint is returned when the client is constructed without
	// a generation endpoint URL.
	ErrMissingEndpoint = errors.New("generation endpoint URL is required")

	// ErrMissingModel is returned when the client is constructed without
	// a model name.
	ErrMissingModel = errors.New("generation model name is required")
)
