package database

import "time"

// Profile holds a patient's self-reported health and demographic data.
// All clinical fields are free text exactly as entered in the health
// questionnaire; the matching pipeline serializes them into the prompt
// without interpretation.
type Profile struct {
	UserID string `db:"user_id" json:"user_id"`

	FirstName   string `db:"first_name"    json:"first_name"`
	LastName    string `db:"last_name"     json:"last_name"`
	DateOfBirth string `db:"date_of_birth" json:"date_of_birth"` // YYYY-MM-DD
	Gender      string `db:"gender"        json:"gender"`
	Address     string `db:"address"       json:"address"`
	PhoneNumber string `db:"phone_number"  json:"phone_number"`

	PrimaryCondition   string `db:"primary_condition"   json:"primary_condition"`
	ConditionSeverity  string `db:"condition_severity"  json:"condition_severity"`
	DiagnosisDate      string `db:"diagnosis_date"      json:"diagnosis_date"`
	CurrentMedications string `db:"current_medications" json:"current_medications"`
	PastMedications    string `db:"past_medications"    json:"past_medications"`
	Allergies          string `db:"allergies"           json:"allergies"`
	ExistingConditions string `db:"existing_conditions" json:"existing_conditions"`
	PreviousConditions string `db:"previous_conditions" json:"previous_conditions"`
	TestResults        string `db:"test_results"        json:"test_results"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TrialRecord is one clinical trial row as ingested from the upstream
// registry feed. Every descriptive field, including Status, is
// uncontrolled free text; nothing here may be treated as a closed enum.
type TrialRecord struct {
	Number      string `db:"number"      json:"number"`
	Description string `db:"description" json:"description"`
	Phase       string `db:"phase"       json:"phase"`
	Product     string `db:"product"     json:"product"`
	Sponsor     string `db:"sponsor"     json:"sponsor"`
	Status      string `db:"status"      json:"status"`
	AgeGroup    string `db:"age_group"   json:"age_group"`
	Gender      string `db:"gender"      json:"gender"`
	Conditions  string `db:"conditions"  json:"conditions"`
	Endpoint    string `db:"endpoint"    json:"endpoint"`
}

// StoredMatch is the persisted outcome of the last successful match run
// for one user. MatchData and ProfileSnapshot are JSON documents; the
// snapshot is the verbatim profile the run was computed from and is the
// sole input to cache invalidation.
type StoredMatch struct {
	UserID          string    `db:"user_id"`
	MatchData       string    `db:"match_data"`
	ProfileSnapshot string    `db:"profile_snapshot"`
	CreatedAt       time.Time `db:"created_at"`
}
