package gemini

// MatchingSystemInstruction sets the model's role for trial matching.
// The output contract and scoring rules live in the user prompt built by
// the matching package; this persona stays constant across runs.
const MatchingSystemInstruction = `You are a specialized Clinical Trial Matching Assistant. Your task is to perform a strict eligibility check between the provided Patient Data and Trial Criteria. You MUST respond with a single JSON object conforming to the specified structure.`
