package workflow

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Number of most recent evidence items shown to the reasoning stages.
// Bounds prompt size on evidence-heavy runs.
const evidenceWindow = 10

// draft is an interim classification produced by the analyst and reviewed
// by the supervisor.
type draft struct {
	Verdict     string
	Confidence  float64
	Probability float64
	Explanation string
}

// neutralDraft is the degraded interim result when analysis cannot run.
func neutralDraft(reason string) draft {
	return draft{
		Verdict:     VerdictSuspicious,
		Confidence:  neutralConfidence,
		Probability: neutralProbability,
		Explanation: reason,
	}
}

// analyze weighs the gathered evidence against the document and produces an
// interim classification. A failed reasoning call degrades to a neutral
// suspicious draft so the run can still finish.
func (r *Runner) analyze(ctx context.Context, rc *runContext) draft {
	payload := map[string]interface{}{
		"document":    rc.text,
		"evidence":    rc.ledger.RecentEvidence(evidenceWindow),
		"tool_errors": rc.ledger.ErrorStrings(),
	}
	reply, err := r.reasoner.ChatJSON(ctx, "analyst", analystPrompt, payload)
	if err != nil {
		log.Warn().
			Str("workflow_id", rc.id).
			Err(err).
			Msg("analyst_fallback")
		return neutralDraft("analysis unavailable: " + err.Error())
	}

	d, ok := draftFromReply(reply)
	if !ok {
		log.Warn().
			Str("workflow_id", rc.id).
			Msg("analyst_fallback")
		return neutralDraft("analysis produced no usable classification")
	}
	return d
}

// draftFromReply decodes a classification reply. The verdict must be one of
// the known values and both scores must be numeric for the reply to count.
func draftFromReply(reply map[string]interface{}) (draft, bool) {
	verdict, _ := asString(reply["is_scam"])
	switch verdict {
	case VerdictScam, VerdictNotScam, VerdictSuspicious:
	default:
		return draft{}, false
	}
	conf, haveConf := asFloat(reply["confidence_level"])
	prob, haveProb := asFloat(reply["scam_probability"])
	if !haveConf || !haveProb {
		return draft{}, false
	}
	explanation, _ := asString(reply["explanation"])
	return draft{
		Verdict:     verdict,
		Confidence:  clampConfidence(conf),
		Probability: normalizeProbability(prob),
		Explanation: explanation,
	}, true
}
