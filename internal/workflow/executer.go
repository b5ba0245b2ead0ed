package workflow

import (
	"context"

	"github.com/veridex-io/mailguard/internal/mcp"
)

// executerCalls maps a final verdict to the side effects it triggers.
// Confirmed scams are labeled at the source when a message id is known,
// reported, and archived; clean documents are only archived to sharpen
// future retrieval. Suspicious verdicts trigger nothing and wait for a
// human decision.
func executerCalls(a *RiskAssessment, workflowID, messageID string) []mcp.ToolCall {
	summary := map[string]interface{}{
		"workflow_id":      workflowID,
		"is_scam":          a.IsScam,
		"confidence_level": a.ConfidenceLevel,
		"scam_probability": a.ScamProbability,
		"explanation":      a.Explanation,
	}
	archive := mcp.ToolCall{
		Server: "rag-tools",
		Tool:   "store_rag",
		Args: map[string]interface{}{
			"document":   a.Text,
			"assessment": summary,
		},
	}

	switch a.IsScam {
	case VerdictScam:
		var calls []mcp.ToolCall
		if messageID != "" {
			calls = append(calls, mcp.ToolCall{
				Server: "gmail-tools",
				Tool:   "mark_as_scam",
				Args:   map[string]interface{}{"message_id": messageID},
			})
		}
		calls = append(calls,
			mcp.ToolCall{
				Server: "gmail-tools",
				Tool:   "send_report_to_drive",
				Args:   map[string]interface{}{"report_data": summary},
			},
			archive,
		)
		return calls
	case VerdictNotScam:
		return []mcp.ToolCall{archive}
	}
	return nil
}

// execute performs the verdict's side effects best-effort: a failed call is
// recorded and the rest still run, and nothing here changes the assessment.
func (r *Runner) execute(ctx context.Context, rc *runContext, a *RiskAssessment) {
	for _, call := range executerCalls(a, rc.id, rc.doc.MessageID()) {
		if !rc.budget.Allow() {
			rc.log.Decision("executer_halted", "budget exhausted", true, map[string]interface{}{
				"skipped_tool": call.Name(),
			})
			return
		}
		// Outcome already landed in the ledger; nothing else to do.
		_, _ = r.invoke(ctx, rc, call)
	}
}
