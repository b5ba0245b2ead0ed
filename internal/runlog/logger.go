// Package runlog records structured run artifacts for triage workflows.
//
// Every run — fast-routed, deep, or degraded — produces an Artifact listing
// the steps taken, the decisions made, every tool call with its outcome, and
// the final result. Artifacts are persisted in SQLite and support
// progressive disclosure (index → summary → full artifact) for review and
// export.
package runlog

import (
	"time"
)

// Step is one pipeline stage boundary inside a run.
type Step struct {
	Seq         int                    `json:"seq"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	StartedAt   time.Time              `json:"started_at"`
	EndedAt     time.Time              `json:"ended_at,omitempty"`
	DurationMS  int64                  `json:"duration_ms"`
	Detail      map[string]interface{} `json:"detail,omitempty"`
}

// Decision is one recorded branch point.
type Decision struct {
	Name      string                 `json:"name"`
	Condition string                 `json:"condition"`
	Result    bool                   `json:"result"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	At        time.Time              `json:"at"`
}

// ToolCall is one tool invocation with its outcome.
type ToolCall struct {
	Tool       string                 `json:"tool"`
	Args       map[string]interface{} `json:"args,omitempty"`
	Output     interface{}            `json:"output,omitempty"`
	Error      string                 `json:"error,omitempty"`
	DurationMS int64                  `json:"duration_ms"`
	At         time.Time              `json:"at"`
}

// RunError is one recorded non-fatal failure.
type RunError struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Artifact is the complete record of one run.
type Artifact struct {
	WorkflowID  string             `json:"workflow_id"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt time.Time          `json:"completed_at,omitempty"`
	Status      string             `json:"status"`
	Route       string             `json:"route,omitempty"`
	Verdict     string             `json:"verdict,omitempty"`
	TotalTime   float64            `json:"total_time"`
	Steps       []Step             `json:"steps"`
	Decisions   []Decision         `json:"decisions"`
	ToolCalls   []ToolCall         `json:"tool_calls"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Errors      []RunError         `json:"errors,omitempty"`
	FinalResult interface{}        `json:"final_result,omitempty"`
}

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
)

// Logger accumulates one run's artifact in memory. Scoped to a single run
// and driven by one goroutine, so no locking is needed.
type Logger struct {
	artifact Artifact
	openStep *Step
}

// New starts the artifact for a run.
func New(workflowID string) *Logger {
	return &Logger{
		artifact: Artifact{
			WorkflowID: workflowID,
			StartedAt:  time.Now().UTC(),
			Status:     StatusRunning,
			Steps:      []Step{},
			Decisions:  []Decision{},
			ToolCalls:  []ToolCall{},
			Metrics:    map[string]float64{},
		},
	}
}

// StepStart opens a new step. An unclosed previous step is closed first so
// an early return in a stage cannot corrupt the timeline.
func (l *Logger) StepStart(name, description string) {
	l.closeStep(nil)
	l.artifact.Steps = append(l.artifact.Steps, Step{
		Seq:         len(l.artifact.Steps) + 1,
		Name:        name,
		Description: description,
		StartedAt:   time.Now().UTC(),
	})
	l.openStep = &l.artifact.Steps[len(l.artifact.Steps)-1]
}

// StepEnd closes the open step, attaching detail to it.
func (l *Logger) StepEnd(detail map[string]interface{}) {
	l.closeStep(detail)
}

func (l *Logger) closeStep(detail map[string]interface{}) {
	if l.openStep == nil {
		return
	}
	l.openStep.EndedAt = time.Now().UTC()
	l.openStep.DurationMS = l.openStep.EndedAt.Sub(l.openStep.StartedAt).Milliseconds()
	l.openStep.Detail = detail
	l.openStep = nil
}

// Decision records a branch point.
func (l *Logger) Decision(name, condition string, result bool, detail map[string]interface{}) {
	l.artifact.Decisions = append(l.artifact.Decisions, Decision{
		Name:      name,
		Condition: condition,
		Result:    result,
		Detail:    detail,
		At:        time.Now().UTC(),
	})
}

// ToolCall records one tool invocation outcome.
func (l *Logger) ToolCall(tool string, args map[string]interface{}, output interface{}, callErr error, dur time.Duration) {
	tc := ToolCall{
		Tool:       tool,
		Args:       args,
		Output:     output,
		DurationMS: dur.Milliseconds(),
		At:         time.Now().UTC(),
	}
	if callErr != nil {
		tc.Error = callErr.Error()
		tc.Output = nil
	}
	l.artifact.ToolCalls = append(l.artifact.ToolCalls, tc)
}

// Metric records a named run metric.
func (l *Logger) Metric(name string, value float64) {
	l.artifact.Metrics[name] = value
}

// Error records a non-fatal failure.
func (l *Logger) Error(kind, message string) {
	l.artifact.Errors = append(l.artifact.Errors, RunError{
		Kind:    kind,
		Message: message,
		At:      time.Now().UTC(),
	})
}

// Complete closes the artifact with the final result and returns it.
func (l *Logger) Complete(route, verdict string, finalResult interface{}) *Artifact {
	l.closeStep(nil)
	now := time.Now().UTC()
	l.artifact.CompletedAt = now
	l.artifact.Status = StatusCompleted
	l.artifact.Route = route
	l.artifact.Verdict = verdict
	l.artifact.TotalTime = now.Sub(l.artifact.StartedAt).Seconds()
	l.artifact.FinalResult = finalResult
	return &l.artifact
}

// Artifact returns the artifact accumulated so far.
func (l *Logger) Artifact() *Artifact {
	return &l.artifact
}
