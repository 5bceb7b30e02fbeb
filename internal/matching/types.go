// Package matching implements the trial-matching pipeline: building the
// model prompt from a health profile and the trial registry, parsing the
// model's reply, enforcing the score threshold, and persisting the
// outcome with a profile snapshot for cache invalidation.
package matching

// MatchCandidate is one trial the model scored against a profile.
// The JSON field names are the output contract given to the model.
type MatchCandidate struct {
	TrialNumber    string   `json:"trialNumber"`
	MatchScore     int      `json:"matchScore"`
	MatchReasons   []string `json:"matchReasons"`
	Concerns       []string `json:"concerns"`
	Recommendation string   `json:"recommendation"`
}

// MatchResult is the outcome of one matching run. Matches are ordered as
// the model returned them, highest relevance first by convention.
// RawResponse carries the original model output for diagnostics when
// parsing failed; it is empty on clean runs.
type MatchResult struct {
	Matches     []MatchCandidate `json:"matches"`
	RawResponse string           `json:"raw_response,omitempty"`
}
