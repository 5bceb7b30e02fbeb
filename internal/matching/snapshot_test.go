package matching

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skinside/skinside/internal/database"
)

func storedWithSnapshot(t *testing.T, profile *database.Profile) *database.StoredMatch {
	t.Helper()
	snapshot, err := json.Marshal(profile)
	require.NoError(t, err)
	return &database.StoredMatch{
		UserID:          profile.UserID,
		MatchData:       `{"matches":[]}`,
		ProfileSnapshot: string(snapshot),
		CreatedAt:       time.Now().UTC(),
	}
}

func TestNeedsRematchNilStored(t *testing.T) {
	assert.True(t, NeedsRematch(testProfile(), nil))
}

func TestNeedsRematchUnchangedProfile(t *testing.T) {
	profile := testProfile()
	stored := storedWithSnapshot(t, profile)

	assert.False(t, NeedsRematch(profile, stored))
}

func TestNeedsRematchAttributeChange(t *testing.T) {
	stored := storedWithSnapshot(t, testProfile())

	changed := testProfile()
	changed.CurrentMedications = "methotrexate, adalimumab"

	assert.True(t, NeedsRematch(changed, stored))
}

func TestNeedsRematchCosmeticChangeCounts(t *testing.T) {
	stored := storedWithSnapshot(t, testProfile())

	changed := testProfile()
	changed.Allergies = "Penicillin"

	assert.True(t, NeedsRematch(changed, stored))
}

func TestNeedsRematchIgnoresBookkeepingColumns(t *testing.T) {
	profile := testProfile()
	stored := storedWithSnapshot(t, profile)

	resaved := testProfile()
	resaved.CreatedAt = time.Now().UTC()
	resaved.UpdatedAt = time.Now().UTC().Add(time.Hour)

	assert.False(t, NeedsRematch(resaved, stored))
}

func TestNeedsRematchCorruptSnapshot(t *testing.T) {
	stored := &database.StoredMatch{
		UserID:          "user-1",
		MatchData:       `{"matches":[]}`,
		ProfileSnapshot: "not json",
	}

	assert.True(t, NeedsRematch(testProfile(), stored))
}
