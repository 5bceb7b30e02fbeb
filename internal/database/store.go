package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetProfile retrieves a health profile by user ID. Returns nil, nil if not found.
	GetProfile(ctx context.Context, userID string) (*Profile, error)

	// SaveProfile inserts or updates a health profile keyed by user ID.
	SaveProfile(ctx context.Context, profile *Profile) error

	// ListTrials retrieves all trial records.
	ListTrials(ctx context.Context) ([]TrialRecord, error)

	// GetTrial retrieves a single trial by its registry number. Returns nil, nil if not found.
	GetTrial(ctx context.Context, number string) (*TrialRecord, error)

	// SaveTrial inserts or replaces a trial record.
	SaveTrial(ctx context.Context, trial *TrialRecord) error

	// GetStoredMatch retrieves the persisted match result for a user. Returns nil, nil if not found.
	GetStoredMatch(ctx context.Context, userID string) (*StoredMatch, error)

	// SaveStoredMatch upserts the match result row for a user. Full replace, not a merge.
	SaveStoredMatch(ctx context.Context, match *StoredMatch) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetProfile retrieves a health profile by user ID. Returns nil, nil if not found:
// a missing profile is an expected state for new users, not an error.
func (s *sqlxStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id cannot be empty")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var profile Profile
	query := `SELECT user_id, first_name, last_name, date_of_birth, gender, address, phone_number,
	                 primary_condition, condition_severity, diagnosis_date, current_medications,
	                 past_medications, allergies, existing_conditions, previous_conditions,
	                 test_results, created_at, updated_at
	          FROM profiles WHERE user_id = ?`

	err := s.db.GetContext(ctx, &profile, query, userID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No profile found", "user_id", userID)
		return nil, nil

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching profile",
			"user_id", userID, "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting profile", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}

	return &profile, nil
}

// SaveProfile inserts or updates a health profile based on UserID.
// Uses a transaction to ensure atomicity.
func (s *sqlxStore) SaveProfile(ctx context.Context, profile *Profile) error {
	if profile == nil {
		return fmt.Errorf("cannot save nil profile")
	}
	if profile.UserID == "" {
		return fmt.Errorf("profile must have a non-empty user_id")
	}

	now := time.Now().UTC()
	profile.UpdatedAt = now
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving profile",
			"user_id", profile.UserID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	var exists bool
	err = tx.GetContext(ctx, &exists,
		`SELECT 1 FROM profiles WHERE user_id = ? LIMIT 1`, profile.UserID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.ErrorContext(ctx, "Error checking if profile exists",
			"user_id", profile.UserID, "error", err)
		return fmt.Errorf("failed to check if profile exists for user %s: %w", profile.UserID, err)
	}

	if exists {
		query := `
			UPDATE profiles SET
				first_name = :first_name,
				last_name = :last_name,
				date_of_birth = :date_of_birth,
				gender = :gender,
				address = :address,
				phone_number = :phone_number,
				primary_condition = :primary_condition,
				condition_severity = :condition_severity,
				diagnosis_date = :diagnosis_date,
				current_medications = :current_medications,
				past_medications = :past_medications,
				allergies = :allergies,
				existing_conditions = :existing_conditions,
				previous_conditions = :previous_conditions,
				test_results = :test_results,
				updated_at = :updated_at
			WHERE user_id = :user_id
		`
		_, err = tx.NamedExecContext(ctx, query, profile)
	} else {
		query := `
			INSERT INTO profiles (
				user_id, first_name, last_name, date_of_birth, gender, address, phone_number,
				primary_condition, condition_severity, diagnosis_date, current_medications,
				past_medications, allergies, existing_conditions, previous_conditions,
				test_results, created_at, updated_at
			) VALUES (
				:user_id, :first_name, :last_name, :date_of_birth, :gender, :address, :phone_number,
				:primary_condition, :condition_severity, :diagnosis_date, :current_medications,
				:past_medications, :allergies, :existing_conditions, :previous_conditions,
				:test_results, :created_at, :updated_at
			)
		`
		_, err = tx.NamedExecContext(ctx, query, profile)
	}

	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving profile", "user_id", profile.UserID, "error", err)
		return fmt.Errorf("failed to save profile for user %s: %w", profile.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction",
			"user_id", profile.UserID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	operation := "updated"
	if !exists {
		operation = "created"
	}
	s.logger.DebugContext(ctx, "Profile saved successfully",
		"operation", operation, "user_id", profile.UserID)
	return nil
}

// ListTrials retrieves all trial records ordered by registry number.
func (s *sqlxStore) ListTrials(ctx context.Context) ([]TrialRecord, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var trials []TrialRecord
	query := `SELECT number, description, phase, product, sponsor, status, age_group, gender, conditions, endpoint
	          FROM trials ORDER BY number`

	err := s.db.SelectContext(ctx, &trials, query)

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while listing trials", "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error listing trials", "error", err)
		return nil, fmt.Errorf("failed to list trials: %w", err)
	}

	s.logger.DebugContext(ctx, "Fetched trials successfully", "count", len(trials))
	return trials, nil
}

// GetTrial retrieves a single trial by its registry number. Returns nil, nil if not found.
func (s *sqlxStore) GetTrial(ctx context.Context, number string) (*TrialRecord, error) {
	if number == "" {
		return nil, fmt.Errorf("trial number cannot be empty")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var trial TrialRecord
	query := `SELECT number, description, phase, product, sponsor, status, age_group, gender, conditions, endpoint
	          FROM trials WHERE number = ?`

	err := s.db.GetContext(ctx, &trial, query, number)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No trial found", "number", number)
		return nil, nil

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting trial", "number", number, "error", err)
		return nil, fmt.Errorf("failed to get trial %s: %w", number, err)
	}

	return &trial, nil
}

// SaveTrial inserts or replaces a trial record. The upstream registry feed
// re-sends whole records, so a full replace on the number key is correct.
func (s *sqlxStore) SaveTrial(ctx context.Context, trial *TrialRecord) error {
	if trial == nil {
		return fmt.Errorf("cannot save nil trial")
	}
	if trial.Number == "" {
		return fmt.Errorf("trial must have a non-empty number")
	}

	query := `
		INSERT INTO trials (number, description, phase, product, sponsor, status, age_group, gender, conditions, endpoint)
		VALUES (:number, :description, :phase, :product, :sponsor, :status, :age_group, :gender, :conditions, :endpoint)
		ON CONFLICT(number) DO UPDATE SET
			description = excluded.description,
			phase = excluded.phase,
			product = excluded.product,
			sponsor = excluded.sponsor,
			status = excluded.status,
			age_group = excluded.age_group,
			gender = excluded.gender,
			conditions = excluded.conditions,
			endpoint = excluded.endpoint
	`
	if _, err := s.db.NamedExecContext(ctx, query, trial); err != nil {
		s.logger.ErrorContext(ctx, "Error saving trial", "number", trial.Number, "error", err)
		return fmt.Errorf("failed to save trial %s: %w", trial.Number, err)
	}

	s.logger.DebugContext(ctx, "Trial saved successfully", "number", trial.Number)
	return nil
}

// GetStoredMatch retrieves the persisted match result for a user. Returns nil, nil
// if the user has never completed a match run.
func (s *sqlxStore) GetStoredMatch(ctx context.Context, userID string) (*StoredMatch, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id cannot be empty")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var match StoredMatch
	query := `SELECT user_id, match_data, profile_snapshot, created_at
	          FROM match_results WHERE user_id = ?`

	err := s.db.GetContext(ctx, &match, query, userID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No stored match found", "user_id", userID)
		return nil, nil

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching stored match",
			"user_id", userID, "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting stored match", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get stored match for user %s: %w", userID, err)
	}

	return &match, nil
}

// SaveStoredMatch upserts the match result row for a user. Each successful
// match run fully replaces the previous row; partial updates never happen.
func (s *sqlxStore) SaveStoredMatch(ctx context.Context, match *StoredMatch) error {
	if match == nil {
		return fmt.Errorf("cannot save nil stored match")
	}
	if match.UserID == "" {
		return fmt.Errorf("stored match must have a non-empty user_id")
	}

	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving stored match",
			"user_id", match.UserID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	query := `
		INSERT INTO match_results (user_id, match_data, profile_snapshot, created_at)
		VALUES (:user_id, :match_data, :profile_snapshot, :created_at)
		ON CONFLICT(user_id) DO UPDATE SET
			match_data = excluded.match_data,
			profile_snapshot = excluded.profile_snapshot,
			created_at = excluded.created_at
	`
	if _, err := tx.NamedExecContext(ctx, query, match); err != nil {
		s.logger.ErrorContext(ctx, "Error saving stored match", "user_id", match.UserID, "error", err)
		return fmt.Errorf("failed to save stored match for user %s: %w", match.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction",
			"user_id", match.UserID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Stored match saved successfully", "user_id", match.UserID)
	return nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
