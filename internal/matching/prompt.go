package matching

import (
	"fmt"
	"strings"
	"time"

	"github.com/skinside/skinside/internal/database"
)

const dobLayout = "2006-01-02"

// daysPerYear averages leap years into day arithmetic. Age is computed
// as floor(days since birth / 365.25), which is an approximation and not
// calendar-accurate around birthdays.
const daysPerYear = 365.25

// BuildPrompt serializes a health profile and the trial registry into a
// single natural-language instruction payload, including the scoring
// rules and the exact JSON shape expected in the reply. Deterministic and
// side-effect free. The threshold stated here is advisory only; the
// threshold filter is the authoritative enforcement point.
func BuildPrompt(profile *database.Profile, trials []database.TrialRecord, minScore int) string {
	var sb strings.Builder

	sb.WriteString("Analyze the User Profile below and compare it against the available Clinical Trials to find the best matches.\n\n")

	sb.WriteString("--- USER PROFILE ---\n")
	fmt.Fprintf(&sb, "- Name: %s %s\n", valueOr(profile.FirstName, "N/A"), valueOr(profile.LastName, "N/A"))
	fmt.Fprintf(&sb, "- Age: %s\n", ageFromDOB(profile.DateOfBirth, time.Now()))
	fmt.Fprintf(&sb, "- Gender: %s\n", valueOr(profile.Gender, "Not provided"))
	fmt.Fprintf(&sb, "- Primary Condition: %s\n", valueOr(profile.PrimaryCondition, "Not provided"))
	fmt.Fprintf(&sb, "- Condition Stage/Severity: %s\n", valueOr(profile.ConditionSeverity, "Not provided"))
	fmt.Fprintf(&sb, "- Date of Diagnosis: %s\n", valueOr(profile.DiagnosisDate, "Not provided"))
	fmt.Fprintf(&sb, "- Current Medications: %s\n", valueOr(profile.CurrentMedications, "None"))
	fmt.Fprintf(&sb, "- Past Medications: %s\n", valueOr(profile.PastMedications, "None"))
	fmt.Fprintf(&sb, "- Allergies: %s\n", valueOr(profile.Allergies, "None"))
	fmt.Fprintf(&sb, "- Existing Medical Conditions: %s\n", valueOr(profile.ExistingConditions, "None"))
	fmt.Fprintf(&sb, "- Previous Medical Conditions: %s\n", valueOr(profile.PreviousConditions, "None"))

	sb.WriteString("\n--- AVAILABLE TRIALS ---\n")
	for i, trial := range trials {
		fmt.Fprintf(&sb, "\nTrial %d:\n", i+1)
		fmt.Fprintf(&sb, "- Trial Number: %s\n", trial.Number)
		fmt.Fprintf(&sb, "- Phase: %s\n", valueOr(trial.Phase, "N/A"))
		fmt.Fprintf(&sb, "- Product: %s\n", valueOr(trial.Product, "N/A"))
		fmt.Fprintf(&sb, "- Sponsor: %s\n", valueOr(trial.Sponsor, "N/A"))
		fmt.Fprintf(&sb, "- Status: %s\n", valueOr(trial.Status, "N/A"))
		fmt.Fprintf(&sb, "- Age Group: %s\n", valueOr(trial.AgeGroup, "N/A"))
		fmt.Fprintf(&sb, "- Gender: %s\n", valueOr(trial.Gender, "N/A"))
		fmt.Fprintf(&sb, "- Conditions: %s\n", valueOr(trial.Conditions, "N/A"))
		fmt.Fprintf(&sb, "- Description: %s\n", valueOr(trial.Description, "No description provided."))
	}

	sb.WriteString("\n--- INSTRUCTIONS ---\n")
	fmt.Fprintf(&sb, "1. Analyze the profile against each trial's criteria (Age, Gender, Conditions, Medications, Status).\n")
	fmt.Fprintf(&sb, "2. Assign a match score from 0-100 (%d is the minimum threshold for inclusion).\n", minScore)
	fmt.Fprintf(&sb, "3. Only include trials with a match score of %d or higher. If no trial reaches %d, return only the single trial with the highest match score.\n", minScore, minScore)
	sb.WriteString("4. Ensure your final output is a single, valid JSON object that strictly follows the format below.\n")

	sb.WriteString("\n--- REQUIRED JSON OUTPUT FORMAT ---\n")
	sb.WriteString(`{
  "matches": [
    {
      "trialNumber": "Trial Number from list",
      "matchScore": 85,
      "matchReasons": ["Meets age and condition criteria.", "Trial is currently recruiting."],
      "concerns": ["Patient is on an exclusionary medication."],
      "recommendation": "Brief summary on next steps."
    }
  ]
}
`)

	return sb.String()
}

// ageFromDOB renders the patient's age in whole years, or "Not provided"
// when the date of birth is absent or unparseable.
func ageFromDOB(dob string, now time.Time) string {
	if dob == "" {
		return "Not provided"
	}
	birth, err := time.Parse(dobLayout, dob)
	if err != nil {
		return "Not provided"
	}
	days := now.Sub(birth).Hours() / 24
	if days < 0 {
		return "Not provided"
	}
	return fmt.Sprintf("%d", int(days/daysPerYear))
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
