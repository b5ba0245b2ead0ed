package workflow

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/veridex-io/mailguard/internal/mcp"
)

// plannerTools is the whitelist of probes the planner may schedule.
// Anything else a reasoning reply names is discarded.
var plannerTools = map[string]bool{
	"extraction-tools.extract_link":         true,
	"extraction-tools.extract_number":       true,
	"extraction-tools.extract_organisation": true,
}

// plan asks the reasoning model which extraction probes to run against the
// document, filters the answer through the whitelist and truncates it to the
// remaining call budget, preserving the proposed order. A failed reasoning
// call or an empty proposal contributes no extra calls; analysis proceeds
// on whatever evidence already exists.
func (r *Runner) plan(ctx context.Context, rc *runContext) []mcp.ToolCall {
	payload := map[string]interface{}{
		"document":      rc.text,
		"allowed_tools": plannerToolNames(),
		"budget_left":   rc.budget.CallsRemaining(),
	}
	reply, err := r.reasoner.ChatJSON(ctx, "planner", plannerPrompt, payload)
	if err != nil {
		log.Warn().
			Str("workflow_id", rc.id).
			Err(err).
			Msg("planner_skipped")
		return nil
	}

	calls := plannedCalls(reply, rc.text)
	if rem := rc.budget.CallsRemaining(); len(calls) > rem {
		log.Debug().
			Str("workflow_id", rc.id).
			Int("proposed", len(calls)).
			Int("budget_left", rem).
			Msg("plan_truncated")
		calls = calls[:rem]
	}
	return calls
}

// plannedCalls decodes the reasoning reply's call list, dropping anything
// that is malformed or not whitelisted.
func plannedCalls(reply map[string]interface{}, text string) []mcp.ToolCall {
	items, _ := reply["calls"].([]interface{})
	calls := make([]mcp.ToolCall, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := asString(obj["name"])
		if !plannerTools[name] {
			continue
		}
		server, tool, found := strings.Cut(name, ".")
		if !found {
			continue
		}
		args, _ := obj["arguments"].(map[string]interface{})
		if args == nil {
			args = map[string]interface{}{"document": text}
		}
		calls = append(calls, mcp.ToolCall{Server: server, Tool: tool, Args: args})
	}
	return calls
}

func plannerToolNames() []string {
	names := make([]string, 0, len(plannerTools))
	for name := range plannerTools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
