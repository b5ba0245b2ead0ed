package workflow

import (
	"fmt"

	"github.com/veridex-io/mailguard/internal/mcp"
)

// Evidence is one successful tool outcome, keyed by the qualified tool name.
type Evidence struct {
	Tool   string      `json:"tool"`
	Output interface{} `json:"output"`
}

// ToolError is one failed tool outcome, keyed by the qualified tool name.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"error"`
}

func (e ToolError) String() string {
	return fmt.Sprintf("%s failed: %s", e.Tool, e.Message)
}

// Ledger accumulates the tool outcomes of one run in invocation order.
// Every attempted call lands in exactly one of the two lists.
type Ledger struct {
	evidence []Evidence
	errors   []ToolError
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// AddEvidence appends a successful outcome for the given call.
func (l *Ledger) AddEvidence(call mcp.ToolCall, output interface{}) {
	l.evidence = append(l.evidence, Evidence{Tool: call.Name(), Output: output})
}

// AddError appends a failed outcome for the given call.
func (l *Ledger) AddError(call mcp.ToolCall, err error) {
	l.errors = append(l.errors, ToolError{Tool: call.Name(), Message: err.Error()})
}

// Evidence returns the successful outcomes in invocation order.
func (l *Ledger) Evidence() []Evidence {
	return l.evidence
}

// Errors returns the failed outcomes in invocation order.
func (l *Ledger) Errors() []ToolError {
	return l.errors
}

// EvidenceCount returns the number of successful outcomes.
func (l *Ledger) EvidenceCount() int {
	return len(l.evidence)
}

// ErrorCount returns the number of failed outcomes.
func (l *Ledger) ErrorCount() int {
	return len(l.errors)
}

// RecentEvidence returns up to the n most recent successful outcomes,
// preserving order. Used to bound reasoning prompt size.
func (l *Ledger) RecentEvidence(n int) []Evidence {
	if len(l.evidence) <= n {
		return l.evidence
	}
	return l.evidence[len(l.evidence)-n:]
}

// ErrorStrings renders the failed outcomes as plain strings for reasoning
// prompt payloads.
func (l *Ledger) ErrorStrings() []string {
	out := make([]string, 0, len(l.errors))
	for _, e := range l.errors {
		out = append(out, e.String())
	}
	return out
}

// FirstOutput returns the output of the first successful outcome whose tool
// name matches, and whether one was found.
func (l *Ledger) FirstOutput(tool string) (interface{}, bool) {
	for _, ev := range l.evidence {
		if ev.Tool == tool {
			return ev.Output, true
		}
	}
	return nil, false
}
