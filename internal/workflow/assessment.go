package workflow

import "fmt"

// Verdict values for a risk assessment.
const (
	VerdictScam       = "scam"
	VerdictNotScam    = "not_scam"
	VerdictSuspicious = "suspicious"
)

// ProcessingMetadata summarizes how a run unfolded.
type ProcessingMetadata struct {
	WorkflowID        string   `json:"workflow_id"`
	TotalTime         float64  `json:"total_time"`
	EvidenceGathered  int      `json:"evidence_gathered"`
	ErrorsEncountered int      `json:"errors_encountered"`
	Route             string   `json:"route"`
	AgentsCalled      []string `json:"agents_called"`
}

// RiskAssessment is the terminal result of one triage run. Every run ends
// with a valid assessment regardless of upstream failures.
type RiskAssessment struct {
	IsScam          string             `json:"is_scam"`
	ConfidenceLevel float64            `json:"confidence_level"`
	ScamProbability float64            `json:"scam_probability"`
	Explanation     string             `json:"explanation"`
	Text            string             `json:"text"`
	ToolEvidence    []Evidence         `json:"tool_evidence"`
	ToolErrors      []ToolError        `json:"tool_errors"`
	Metadata        ProcessingMetadata `json:"processing_metadata"`
}

// Validate reports whether the assessment satisfies the result schema:
// a known verdict, confidence in [0,1] and probability in [0,100].
func (a *RiskAssessment) Validate() error {
	switch a.IsScam {
	case VerdictScam, VerdictNotScam, VerdictSuspicious:
	default:
		return fmt.Errorf("invalid verdict %q", a.IsScam)
	}
	if a.ConfidenceLevel < 0 || a.ConfidenceLevel > 1 {
		return fmt.Errorf("confidence_level %v out of range [0,1]", a.ConfidenceLevel)
	}
	if a.ScamProbability < 0 || a.ScamProbability > 100 {
		return fmt.Errorf("scam_probability %v out of range [0,100]", a.ScamProbability)
	}
	return nil
}

// clampConfidence forces a confidence value into [0,1].
func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampProbability forces a probability value into [0,100].
func clampProbability(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// normalizeProbability maps fractional probabilities onto the percentage
// scale. Reasoning replies sometimes answer 0.85 where 85 is meant; values
// at or below 1 are treated as fractions.
func normalizeProbability(v float64) float64 {
	if v > 0 && v <= 1 {
		v *= 100
	}
	return clampProbability(v)
}

// asFloat coerces the numeric shapes a decoded JSON field can take.
func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// asString coerces a decoded JSON field to a string.
func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
