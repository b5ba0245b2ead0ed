package workflow

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Route identifies which analysis path a document takes.
type Route string

// Known routes, from cheapest to most thorough.
const (
	RouteFastScam       Route = "fast_scam"
	RouteFastLegitimate Route = "fast_legitimate"
	RouteFullAnalysis   Route = "full_analysis"
	RouteDeepAnalysis   Route = "deep_analysis"
)

// Routing thresholds over the retrieval scores.
const (
	fastConfidence      = 0.9
	deepConfidence      = 0.5
	scamProbabilityHigh = 80.0
	scamProbabilityLow  = 20.0
)

// RoutingDecision is the router's output. The route name and reasoning may
// come from a reasoning call, but the downstream plan is always derived
// deterministically from the route.
type RoutingDecision struct {
	Route           Route    `json:"route"`
	Reasoning       string   `json:"reasoning"`
	SkipToExecution bool     `json:"skip_to_execution"`
	FinalVerdict    string   `json:"final_verdict,omitempty"`
	Agents          []string `json:"agents_to_call"`
}

// fallbackRoute applies the routing thresholds directly to the retrieval
// scores. Used when the reasoning call fails or answers with an unknown
// route, and mirrors what the routing prompt instructs.
func fallbackRoute(confidence, probability float64) Route {
	switch {
	case confidence > fastConfidence && probability > scamProbabilityHigh:
		return RouteFastScam
	case confidence > fastConfidence && probability < scamProbabilityLow:
		return RouteFastLegitimate
	case confidence < deepConfidence:
		return RouteDeepAnalysis
	default:
		return RouteFullAnalysis
	}
}

// decisionForRoute expands a route name into the full decision: whether the
// reasoning stages are skipped, and which agents run if not.
func decisionForRoute(route Route, reasoning string) RoutingDecision {
	d := RoutingDecision{Route: route, Reasoning: reasoning}
	switch route {
	case RouteFastScam:
		d.SkipToExecution = true
		d.FinalVerdict = VerdictScam
	case RouteFastLegitimate:
		d.SkipToExecution = true
		d.FinalVerdict = VerdictNotScam
	default:
		d.Agents = []string{AgentPlanner, AgentAnalyst, AgentSupervisor}
	}
	return d
}

// route selects the analysis path for the current document. The reasoning
// call sees the document and the retrieval scores; its route answer is
// trusted only when it names a known route, otherwise the thresholds decide.
func (r *Runner) route(ctx context.Context, rc *runContext, confidence, probability float64) RoutingDecision {
	payload := map[string]interface{}{
		"document":         rc.text,
		"confidence_level": confidence,
		"scam_probability": probability,
	}
	reply, err := r.reasoner.ChatJSON(ctx, "router", routerPrompt, payload)
	if err != nil {
		route := fallbackRoute(confidence, probability)
		log.Warn().
			Str("workflow_id", rc.id).
			Str("route", string(route)).
			Err(err).
			Msg("router_fallback")
		return decisionForRoute(route, "threshold fallback: "+err.Error())
	}

	name, _ := asString(reply["route"])
	reasoning, _ := asString(reply["reasoning"])
	switch Route(name) {
	case RouteFastScam, RouteFastLegitimate, RouteFullAnalysis, RouteDeepAnalysis:
		return decisionForRoute(Route(name), reasoning)
	}
	route := fallbackRoute(confidence, probability)
	log.Warn().
		Str("workflow_id", rc.id).
		Str("invalid_route", name).
		Str("route", string(route)).
		Msg("router_fallback")
	return decisionForRoute(route, "threshold fallback: unrecognized route")
}
