package matching

import (
	"encoding/json"
	"time"

	"github.com/skinside/skinside/internal/database"
)

// NeedsRematch reports whether previously computed matches are stale for
// the current profile. True when no stored match exists, when its
// snapshot cannot be decoded, or when any profile attribute differs from
// the snapshot. The comparison is full-structure value equality, not a
// semantic diff: cosmetic changes count, so an unnecessary re-match can
// happen but a stale result is never silently reused.
func NeedsRematch(current *database.Profile, stored *database.StoredMatch) bool {
	if stored == nil {
		return true
	}

	var snapshot database.Profile
	if err := json.Unmarshal([]byte(stored.ProfileSnapshot), &snapshot); err != nil {
		return true
	}

	return !profilesEqual(current, &snapshot)
}

// profilesEqual compares every profile attribute. The created_at and
// updated_at columns are row bookkeeping, not health data; including them
// would force a paid re-match on every no-op save.
func profilesEqual(a, b *database.Profile) bool {
	ac, bc := *a, *b
	ac.CreatedAt, bc.CreatedAt = time.Time{}, time.Time{}
	ac.UpdatedAt, bc.UpdatedAt = time.Time{}, time.Time{}
	return ac == bc
}
