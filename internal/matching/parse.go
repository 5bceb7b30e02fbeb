package matching

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// jsonSpanRe locates the first top-level '{' through the last '}' in the
// raw text, greedily. Model output is often wrapped in prose or markdown
// code fences; the span match strips both without needing to understand
// the wrapping.
var jsonSpanRe = regexp.MustCompile(`(?s)\{.*\}`)

// rawCandidate mirrors MatchCandidate with a pointer score so a missing
// matchScore is distinguishable from zero. Every external field is
// optional until checked.
type rawCandidate struct {
	TrialNumber    string   `json:"trialNumber"`
	MatchScore     *float64 `json:"matchScore"`
	MatchReasons   []string `json:"matchReasons"`
	Concerns       []string `json:"concerns"`
	Recommendation string   `json:"recommendation"`
}

type rawResult struct {
	Matches []rawCandidate `json:"matches"`
}

// ParseResult extracts a MatchResult from raw model output. It first
// tries the greedy JSON span, then the raw text verbatim. On total
// failure it returns a well-formed empty MatchResult carrying the raw
// text for diagnostics, together with ErrParse. The caller always gets
// a usable object to branch on; ErrParse is recoverable.
func ParseResult(raw string) (MatchResult, error) {
	if span := jsonSpanRe.FindString(raw); span != "" {
		var doc rawResult
		if err := json.Unmarshal([]byte(span), &doc); err == nil {
			return buildResult(doc), nil
		}
	}

	var doc rawResult
	if err := json.Unmarshal([]byte(raw), &doc); err == nil {
		return buildResult(doc), nil
	}

	return MatchResult{
		Matches:     []MatchCandidate{},
		RawResponse: raw,
	}, fmt.Errorf("%w: no valid JSON object located in model output", ErrParse)
}

// buildResult validates the decoded document just enough to avoid
// downstream crashes: a missing matches key becomes an empty list, and a
// candidate without a numeric matchScore is a parse defect that drops the
// entry (never a zero score).
func buildResult(doc rawResult) MatchResult {
	matches := make([]MatchCandidate, 0, len(doc.Matches))
	for _, c := range doc.Matches {
		if c.MatchScore == nil {
			continue
		}
		reasons := c.MatchReasons
		if reasons == nil {
			reasons = []string{}
		}
		concerns := c.Concerns
		if concerns == nil {
			concerns = []string{}
		}
		matches = append(matches, MatchCandidate{
			TrialNumber:    c.TrialNumber,
			MatchScore:     int(*c.MatchScore),
			MatchReasons:   reasons,
			Concerns:       concerns,
			Recommendation: c.Recommendation,
		})
	}
	return MatchResult{Matches: matches}
}
