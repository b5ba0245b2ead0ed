package runlog

import "time"

// ExportRecord is a flat view of one run for `mailguard runs export`.
// Index columns first, then the outcome fields.
type ExportRecord struct {
	WorkflowID      string    `json:"workflow_id"`
	StartedAt       time.Time `json:"started_at"`
	Status          string    `json:"status"`
	Route           string    `json:"route"`
	Verdict         string    `json:"verdict"`
	TotalTime       float64   `json:"total_time"`
	ToolCalls       int       `json:"tool_calls"`
	ToolErrors      int       `json:"tool_errors"`
	ConfidenceLevel float64   `json:"confidence_level"`
	ScamProbability float64   `json:"scam_probability"`
	Explanation     string    `json:"explanation,omitempty"`
}

// ToExportRecord builds an ExportRecord from a full Artifact. The final
// result is decoded loosely: artifacts read back from storage carry it as a
// generic JSON object.
func ToExportRecord(a *Artifact) ExportRecord {
	rec := ExportRecord{
		WorkflowID: a.WorkflowID,
		StartedAt:  a.StartedAt,
		Status:     a.Status,
		Route:      a.Route,
		Verdict:    a.Verdict,
		TotalTime:  a.TotalTime,
		ToolCalls:  len(a.ToolCalls),
		ToolErrors: len(a.Errors),
	}
	if result, ok := a.FinalResult.(map[string]interface{}); ok {
		if v, ok := result["confidence_level"].(float64); ok {
			rec.ConfidenceLevel = v
		}
		if v, ok := result["scam_probability"].(float64); ok {
			rec.ScamProbability = v
		}
		if v, ok := result["explanation"].(string); ok {
			rec.Explanation = v
		}
	}
	return rec
}
