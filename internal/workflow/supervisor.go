package workflow

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Supervisor override thresholds applied to the scam probability when the
// review reply is unusable.
const (
	overrideScamAbove    = 70.0
	overrideNotScamBelow = 30.0
)

// supervise reviews the analyst's draft for consistency between verdict and
// scores. When the review reply is missing or malformed, the verdict is
// re-derived deterministically from the draft's probability.
func (r *Runner) supervise(ctx context.Context, rc *runContext, d draft) draft {
	payload := map[string]interface{}{
		"document": rc.text,
		"draft": map[string]interface{}{
			"is_scam":          d.Verdict,
			"confidence_level": d.Confidence,
			"scam_probability": d.Probability,
			"explanation":      d.Explanation,
		},
		"evidence":    rc.ledger.RecentEvidence(evidenceWindow),
		"tool_errors": rc.ledger.ErrorStrings(),
	}
	reply, err := r.reasoner.ChatJSON(ctx, "supervisor", supervisorPrompt, payload)
	if err != nil {
		log.Warn().
			Str("workflow_id", rc.id).
			Err(err).
			Msg("supervisor_fallback")
		return overrideDraft(d, rc.ledger.EvidenceCount(), rc.route)
	}
	reviewed, ok := draftFromReply(reply)
	if !ok {
		log.Warn().
			Str("workflow_id", rc.id).
			Msg("supervisor_fallback")
		return overrideDraft(d, rc.ledger.EvidenceCount(), rc.route)
	}
	return reviewed
}

// overrideDraft re-derives the verdict from the draft's probability so the
// final verdict and scores cannot contradict each other, and replaces the
// explanation with one marking the fallback, its evidence count and route.
func overrideDraft(d draft, evidenceCount int, route string) draft {
	verdict := VerdictSuspicious
	switch {
	case d.Probability > overrideScamAbove:
		verdict = VerdictScam
	case d.Probability < overrideNotScamBelow:
		verdict = VerdictNotScam
	}
	if verdict != d.Verdict {
		log.Debug().
			Str("draft_verdict", d.Verdict).
			Str("verdict", verdict).
			Float64("scam_probability", d.Probability).
			Msg("verdict_overridden")
	}
	d.Verdict = verdict
	d.Explanation = fmt.Sprintf(
		"fallback decision: verdict %s derived from scam probability %.0f with %d evidence item(s) on route %s",
		verdict, d.Probability, evidenceCount, route)
	return d
}
