package matching

import "errors"

var (
	// ErrConfiguration indicates the matching pipeline has no configured
	// requester (missing API key). No upstream call is ever attempted.
	ErrConfiguration = errors.New("matching is not configured")

	// ErrNoProfile indicates the user has no health profile yet. An
	// empty-result state, not a failure.
	ErrNoProfile = errors.New("no health profile to match")

	// ErrNoTrials indicates the trial registry is empty. An empty-result
	// state, not a failure; the model is never contacted.
	ErrNoTrials = errors.New("no trials available to match against")

	// ErrParse indicates no valid JSON object could be located in the
	// model output. Always recovered into an empty MatchResult carrying
	// the raw text; never propagated to the caller as a failure.
	ErrParse = errors.New("failed to parse model response")

	// ErrPersistence indicates the match result could not be written. The
	// previously stored match, if any, remains authoritative.
	ErrPersistence = errors.New("failed to persist match result")
)
