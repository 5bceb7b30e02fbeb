package matching

// ApplyThreshold enforces the minimum-score cutoff. Pure and total:
//   - candidates scoring at least minScore are kept in original order;
//   - if none qualify but candidates exist, exactly the single
//     highest-scoring candidate remains (ties broken by first occurrence);
//   - an empty input stays empty.
//
// This is the authoritative enforcement point; the same rule stated in
// the prompt is advisory only and must not be trusted.
func ApplyThreshold(result MatchResult, minScore int) MatchResult {
	if len(result.Matches) == 0 {
		return result
	}

	kept := make([]MatchCandidate, 0, len(result.Matches))
	for _, m := range result.Matches {
		if m.MatchScore >= minScore {
			kept = append(kept, m)
		}
	}
	if len(kept) > 0 {
		result.Matches = kept
		return result
	}

	best := result.Matches[0]
	for _, m := range result.Matches[1:] {
		if m.MatchScore > best.MatchScore {
			best = m
		}
	}
	result.Matches = []MatchCandidate{best}
	return result
}
