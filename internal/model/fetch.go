package model

// FetchOutcome classifies the result of fetching one discovered page.
//
// Design decision: outcomes form a closed enum rather than carrying raw
// error strings. Raw transport errors can embed hostnames, circuit
// details, or proxy internals; collapsing them into a fixed taxonomy
// before the result leaves the crawler keeps that information out of
// logs and downstream services.
type FetchOutcome int

const (
	// OutcomeRawContent means the page was fetched successfully and the
	// FetchResult carries its body.
	OutcomeRawContent FetchOutcome = iota

	// OutcomeDeadLink means the liveness pre-check reported an HTTP
	// error status, so the full fetch was skipped.
	OutcomeDeadLink

	// OutcomeTimeout means the fetch exceeded its deadline.
	OutcomeTimeout

	// OutcomeConnectionError means the transport could not reach the
	// service (refused, unreachable, circuit failure).
	OutcomeConnectionError

	// OutcomeProtocolError means the service answered with a non-200
	// status or an unreadable body.
	OutcomeProtocolError

	// OutcomeUnknown covers failures that fit no other category.
	OutcomeUnknown
)

// String returns a short stable label for the outcome.
func (o FetchOutcome) String() string {
	switch o {
	case OutcomeRawContent:
		return "raw_content"
	case OutcomeDeadLink:
		return "dead_link"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeConnectionError:
		return "connection_error"
	case OutcomeProtocolError:
		return "protocol_error"
	default:
		return "unknown"
	}
}

// OK reports whether the outcome carries usable page content.
func (o FetchOutcome) OK() bool {
	return o == OutcomeRawContent
}

// FetchResult is the immutable result of fetching one URL.
// Content is only set when Outcome is OutcomeRawContent.
type FetchResult struct {
	// URL is the normalized URL that was fetched.
	URL string

	// Outcome classifies how the fetch ended.
	Outcome FetchOutcome

	// Content is the raw page body for successful fetches.
	Content string
}
