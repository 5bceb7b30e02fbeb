package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func candidate(number string, score int) MatchCandidate {
	return MatchCandidate{
		TrialNumber:  number,
		MatchScore:   score,
		MatchReasons: []string{},
		Concerns:     []string{},
	}
}

func TestApplyThresholdKeepsQualifyingInOrder(t *testing.T) {
	result := MatchResult{Matches: []MatchCandidate{
		candidate("T1", 90),
		candidate("T2", 40),
		candidate("T3", 65),
	}}

	filtered := ApplyThreshold(result, 65)

	assert.Len(t, filtered.Matches, 2)
	assert.Equal(t, "T1", filtered.Matches[0].TrialNumber)
	assert.Equal(t, "T3", filtered.Matches[1].TrialNumber)
}

func TestApplyThresholdFallsBackToSingleBest(t *testing.T) {
	result := MatchResult{Matches: []MatchCandidate{
		candidate("T1", 30),
		candidate("T2", 55),
		candidate("T3", 42),
	}}

	filtered := ApplyThreshold(result, 65)

	assert.Len(t, filtered.Matches, 1)
	assert.Equal(t, "T2", filtered.Matches[0].TrialNumber)
}

func TestApplyThresholdFallbackTiesBreakOnFirstOccurrence(t *testing.T) {
	result := MatchResult{Matches: []MatchCandidate{
		candidate("T1", 50),
		candidate("T2", 50),
	}}

	filtered := ApplyThreshold(result, 65)

	assert.Len(t, filtered.Matches, 1)
	assert.Equal(t, "T1", filtered.Matches[0].TrialNumber)
}

func TestApplyThresholdEmptyStaysEmpty(t *testing.T) {
	filtered := ApplyThreshold(MatchResult{Matches: []MatchCandidate{}}, 65)
	assert.Empty(t, filtered.Matches)
}

func TestApplyThresholdExactBoundaryQualifies(t *testing.T) {
	result := MatchResult{Matches: []MatchCandidate{candidate("T1", 65)}}

	filtered := ApplyThreshold(result, 65)

	assert.Len(t, filtered.Matches, 1)
}

func TestApplyThresholdIsIdempotent(t *testing.T) {
	result := MatchResult{Matches: []MatchCandidate{
		candidate("T1", 90),
		candidate("T2", 40),
		candidate("T3", 70),
	}}

	once := ApplyThreshold(result, 65)
	twice := ApplyThreshold(once, 65)

	assert.Equal(t, once, twice)
}

func TestApplyThresholdFallbackIsIdempotent(t *testing.T) {
	result := MatchResult{Matches: []MatchCandidate{
		candidate("T1", 30),
		candidate("T2", 55),
	}}

	once := ApplyThreshold(result, 65)
	twice := ApplyThreshold(once, 65)

	assert.Equal(t, once, twice)
}
