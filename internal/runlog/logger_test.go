package runlog

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerBuildsArtifact(t *testing.T) {
	l := New("abc12345")

	l.StepStart("normalize", "convert input")
	l.StepEnd(map[string]interface{}{"text_len": 42})

	l.StepStart("retrieve", "similarity search")
	l.ToolCall("rag-tools.call_rag", map[string]interface{}{"document": "x"},
		map[string]interface{}{"confidence_level": 0.9}, nil, 12*time.Millisecond)
	l.StepEnd(nil)

	l.Decision("route_selected", "high scores", true, map[string]interface{}{"route": "fast_scam"})
	l.ToolCall("gmail-tools.mark_as_scam", nil, nil, errors.New("api down"), 5*time.Millisecond)
	l.Error("tool_call", "api down")
	l.Metric("tool_calls", 2)

	a := l.Complete("fast_scam", "scam", map[string]interface{}{"is_scam": "scam"})

	assert.Equal(t, "abc12345", a.WorkflowID)
	assert.Equal(t, StatusCompleted, a.Status)
	assert.Equal(t, "fast_scam", a.Route)
	assert.Equal(t, "scam", a.Verdict)
	assert.False(t, a.CompletedAt.IsZero())
	assert.GreaterOrEqual(t, a.TotalTime, 0.0)

	require.Len(t, a.Steps, 2)
	assert.Equal(t, 1, a.Steps[0].Seq)
	assert.Equal(t, "normalize", a.Steps[0].Name)
	assert.Equal(t, 42, a.Steps[0].Detail["text_len"])
	assert.False(t, a.Steps[1].EndedAt.IsZero())

	require.Len(t, a.Decisions, 1)
	assert.Equal(t, "route_selected", a.Decisions[0].Name)
	assert.True(t, a.Decisions[0].Result)

	require.Len(t, a.ToolCalls, 2)
	assert.Empty(t, a.ToolCalls[0].Error)
	assert.Equal(t, "api down", a.ToolCalls[1].Error)
	assert.Nil(t, a.ToolCalls[1].Output)

	require.Len(t, a.Errors, 1)
	assert.Equal(t, "tool_call", a.Errors[0].Kind)
	assert.Equal(t, 2.0, a.Metrics["tool_calls"])
}

func TestLoggerClosesDanglingStep(t *testing.T) {
	l := New("wf1")
	l.StepStart("one", "")
	// A stage that returns early never calls StepEnd; the next StepStart
	// closes it.
	l.StepStart("two", "")
	a := l.Complete("full_analysis", "suspicious", nil)

	require.Len(t, a.Steps, 2)
	assert.False(t, a.Steps[0].EndedAt.IsZero())
	assert.False(t, a.Steps[1].EndedAt.IsZero())
}

func TestLoggerStepEndWithoutStart(t *testing.T) {
	l := New("wf2")
	l.StepEnd(nil) // must not panic
	a := l.Artifact()
	assert.Empty(t, a.Steps)
	assert.Equal(t, StatusRunning, a.Status)
}
