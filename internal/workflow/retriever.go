package workflow

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/veridex-io/mailguard/internal/mcp"
)

// Neutral retrieval scores used when the similarity search fails or returns
// nothing usable. Neutral values steer the router toward the full path.
const (
	neutralConfidence  = 0.5
	neutralProbability = 50.0
)

// retrieve issues the mandatory similarity-search call and distills its
// output into a prior (confidence, scam probability) over the document.
// Any failure degrades to the neutral prior.
func (r *Runner) retrieve(ctx context.Context, rc *runContext) (confidence, probability float64) {
	if !rc.budget.Allow() {
		log.Warn().
			Str("workflow_id", rc.id).
			Msg("retrieval_skipped_budget")
		return neutralConfidence, neutralProbability
	}
	call := mcp.ToolCall{
		Server: "rag-tools",
		Tool:   "call_rag",
		Args:   map[string]interface{}{"document": rc.text},
	}
	out, err := r.invoke(ctx, rc, call)
	if err != nil {
		log.Warn().
			Str("workflow_id", rc.id).
			Err(err).
			Msg("retrieval_failed")
		return neutralConfidence, neutralProbability
	}

	confidence, probability, ok := retrievalScores(out)
	if !ok {
		log.Warn().
			Str("workflow_id", rc.id).
			Msg("retrieval_unusable")
		return neutralConfidence, neutralProbability
	}
	return clampConfidence(confidence), clampProbability(normalizeProbability(probability))
}

// retrievalScores extracts the prior from a similarity-search reply. Two
// shapes occur: a flat object with the two score fields, or an object whose
// "results" array holds per-match scores to average.
func retrievalScores(out interface{}) (confidence, probability float64, ok bool) {
	obj, isMap := out.(map[string]interface{})
	if !isMap {
		return 0, 0, false
	}

	if results, found := obj["results"].([]interface{}); found {
		var confSum, probSum float64
		var n int
		for _, item := range results {
			match, isMatch := item.(map[string]interface{})
			if !isMatch {
				continue
			}
			conf, haveConf := asFloat(match["confidence_level"])
			prob, haveProb := asFloat(match["scam_probability"])
			if !haveConf || !haveProb {
				continue
			}
			confSum += conf
			probSum += prob
			n++
		}
		if n == 0 {
			return 0, 0, false
		}
		return confSum / float64(n), probSum / float64(n), true
	}

	conf, haveConf := asFloat(obj["confidence_level"])
	prob, haveProb := asFloat(obj["scam_probability"])
	if !haveConf || !haveProb {
		return 0, 0, false
	}
	return conf, prob, true
}
