package testutil

import (
	"context"
	"sync"

	"github.com/veridex-io/mailguard/internal/mcp"
)

// Outcome is one scripted tool result.
type Outcome struct {
	Data interface{}
	Err  error
}

// ScriptedInvoker implements the workflow's tool dispatch without a network:
// outcomes are looked up by qualified tool name, and every call is recorded
// for assertions. Tools without a scripted outcome succeed with an empty
// object.
type ScriptedInvoker struct {
	mu       sync.Mutex
	Outcomes map[string]Outcome
	calls    []mcp.ToolCall
}

// NewScriptedInvoker creates an invoker with the given outcomes.
func NewScriptedInvoker(outcomes map[string]Outcome) *ScriptedInvoker {
	if outcomes == nil {
		outcomes = map[string]Outcome{}
	}
	return &ScriptedInvoker{Outcomes: outcomes}
}

// Invoke records the call and returns its scripted outcome.
func (s *ScriptedInvoker) Invoke(_ context.Context, call mcp.ToolCall) (interface{}, error) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	outcome, ok := s.Outcomes[call.Name()]
	s.mu.Unlock()

	if !ok {
		return map[string]interface{}{}, nil
	}
	return outcome.Data, outcome.Err
}

// Calls returns the recorded calls in order.
func (s *ScriptedInvoker) Calls() []mcp.ToolCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mcp.ToolCall(nil), s.calls...)
}

// CallNames returns the qualified names of the recorded calls in order.
func (s *ScriptedInvoker) CallNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		names = append(names, c.Name())
	}
	return names
}
