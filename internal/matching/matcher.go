package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/skinside/skinside/internal/database"
	"github.com/skinside/skinside/internal/gemini"
)

// Service orchestrates one match run end to end: precondition checks,
// cache invalidation, prompt build, the single upstream request, parsing,
// threshold filtering, and the upsert of the stored match. Runs are
// strictly sequential per invocation; de-duplicating concurrent runs for
// the same user is a caller concern.
type Service struct {
	store     database.Store
	requester gemini.Client
	log       *slog.Logger
	minScore  int
}

// Outcome is what one match run hands back to the caller.
type Outcome struct {
	Result    MatchResult `json:"result"`
	FromCache bool        `json:"from_cache"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewService creates the match orchestrator. requester may be nil when no
// API key is configured; Match then fails with ErrConfiguration before
// any upstream contact.
func NewService(store database.Store, requester gemini.Client, log *slog.Logger, minScore int) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:     store,
		requester: requester,
		log:       log.With("component", "matcher"),
		minScore:  minScore,
	}
}

// Match executes one matching run for the user. When force is false and
// the profile is unchanged since the last run, the stored result is
// returned without contacting the model, avoiding repeated paid
// upstream calls.
//
// Exactly one model call and exactly one upsert happen per successful
// run. Any failure after the request starts and before persistence
// completes leaves the previous stored match untouched.
func (s *Service) Match(ctx context.Context, userID string, force bool) (*Outcome, error) {
	runID := xid.New().String()
	log := s.log.With("run_id", runID, "user_id", userID)

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		log.InfoContext(ctx, "No profile on record, nothing to match")
		return nil, ErrNoProfile
	}

	stored, err := s.store.GetStoredMatch(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored match: %w", err)
	}

	if !force && !NeedsRematch(profile, stored) {
		result, decodeErr := decodeStoredResult(stored)
		if decodeErr == nil {
			log.InfoContext(ctx, "Profile unchanged since last run, returning cached matches",
				"match_count", len(result.Matches))
			return &Outcome{Result: result, FromCache: true, CreatedAt: stored.CreatedAt}, nil
		}
		// A corrupt cached row is not worth failing the run over.
		log.WarnContext(ctx, "Stored match data is undecodable, re-running", "error", decodeErr)
	}

	trials, err := s.store.ListTrials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trials: %w", err)
	}
	if len(trials) == 0 {
		log.InfoContext(ctx, "Trial registry is empty, nothing to match against")
		return nil, ErrNoTrials
	}

	if s.requester == nil {
		log.ErrorContext(ctx, "Match requested but no requester is configured")
		return nil, ErrConfiguration
	}

	// The profile as read here is the snapshot persisted with the result.
	snapshot := *profile

	prompt := BuildPrompt(profile, trials, s.minScore)
	log.InfoContext(ctx, "Requesting trial match", "trial_count", len(trials), "prompt_length", len(prompt))

	raw, err := s.requester.RequestMatch(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, parseErr := ParseResult(raw)
	if parseErr != nil {
		// The empty result still carries the raw text and the run
		// continues to persistence.
		log.WarnContext(ctx, "Model output was not parseable, recovering with empty result",
			"error", parseErr, "raw_length", len(raw))
	}

	result = ApplyThreshold(result, s.minScore)

	if err := s.persist(ctx, userID, result, &snapshot); err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "Match run complete", "match_count", len(result.Matches))
	return &Outcome{Result: result, FromCache: false, CreatedAt: time.Now().UTC()}, nil
}

// Stored returns the persisted match outcome for the user without
// triggering a run. Returns nil, nil when no run has ever completed.
func (s *Service) Stored(ctx context.Context, userID string) (*Outcome, error) {
	stored, err := s.store.GetStoredMatch(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored match: %w", err)
	}
	if stored == nil {
		return nil, nil
	}

	result, err := decodeStoredResult(stored)
	if err != nil {
		return nil, fmt.Errorf("stored match for user %s is undecodable: %w", userID, err)
	}
	return &Outcome{Result: result, FromCache: true, CreatedAt: stored.CreatedAt}, nil
}

func (s *Service) persist(ctx context.Context, userID string, result MatchResult, snapshot *database.Profile) error {
	matchJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("%w: encoding match data: %v", ErrPersistence, err)
	}
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("%w: encoding profile snapshot: %v", ErrPersistence, err)
	}

	stored := &database.StoredMatch{
		UserID:          userID,
		MatchData:       string(matchJSON),
		ProfileSnapshot: string(snapshotJSON),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.SaveStoredMatch(ctx, stored); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func decodeStoredResult(stored *database.StoredMatch) (MatchResult, error) {
	var result MatchResult
	if err := json.Unmarshal([]byte(stored.MatchData), &result); err != nil {
		return MatchResult{}, err
	}
	if result.Matches == nil {
		result.Matches = []MatchCandidate{}
	}
	return result, nil
}
