package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridex-io/mailguard/internal/runlog"
	"github.com/veridex-io/mailguard/internal/trigger"
	"github.com/veridex-io/mailguard/internal/workflow"
)

// stubRunner returns a fixed assessment and records inputs.
type stubRunner struct {
	assessment *workflow.RiskAssessment
	inputs     []interface{}
}

func (s *stubRunner) Assess(_ context.Context, input interface{}) *workflow.RiskAssessment {
	s.inputs = append(s.inputs, input)
	return s.assessment
}

func cleanAssessment(workflowID string) *workflow.RiskAssessment {
	return &workflow.RiskAssessment{
		IsScam:          workflow.VerdictNotScam,
		ConfidenceLevel: 0.95,
		ScamProbability: 5,
		Explanation:     "looks fine",
		Metadata: workflow.ProcessingMetadata{
			WorkflowID:   workflowID,
			Route:        "fast_legitimate",
			AgentsCalled: []string{workflow.AgentExecuter},
		},
	}
}

func newTestServer(t *testing.T, runner trigger.AssessmentRunner) (*Server, *runlog.Store) {
	t.Helper()
	runs, err := runlog.NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { runs.Close() })

	webhook := trigger.NewWebhookHandler(runner, "")
	return NewServer(runner, runs, webhook), runs
}

func TestHandleAssess(t *testing.T) {
	runner := &stubRunner{assessment: cleanAssessment("wf1")}
	srv, _ := newTestServer(t, runner)

	body := bytes.NewBufferString(`{"document": {"subject": "hello", "body": "world"}}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/assess", body)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var a workflow.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, workflow.VerdictNotScam, a.IsScam)
	assert.Equal(t, "wf1", a.Metadata.WorkflowID)

	// The record arrives as a map input.
	require.Len(t, runner.inputs, 1)
	record, ok := runner.inputs[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "hello", record["subject"])
}

func TestHandleAssessTextDocument(t *testing.T) {
	runner := &stubRunner{assessment: cleanAssessment("wf2")}
	srv, _ := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodPost, "/v1/assess", bytes.NewBufferString(`{"document": "plain text"}`))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, runner.inputs, 1)
	assert.Equal(t, "plain text", runner.inputs[0])
}

func TestHandleAssessBadRequests(t *testing.T) {
	runner := &stubRunner{assessment: cleanAssessment("wf3")}
	srv, _ := newTestServer(t, runner)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing document", `{}`},
		{"number document", `{"document": 42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/assess", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			srv.Routes().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, runner.inputs)
}

func TestHandleRunEndpoints(t *testing.T) {
	runner := &stubRunner{assessment: cleanAssessment("wf4")}
	srv, runs := newTestServer(t, runner)

	l := runlog.New("wf4")
	artifact := l.Complete("fast_legitimate", "not_scam", nil)
	require.NoError(t, runs.Save(context.Background(), artifact))

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/wf4", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var got runlog.Artifact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "wf4", got.WorkflowID)

	req = httptest.NewRequest(http.MethodGet, "/v1/runs/missing", nil)
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/runs?verdict=not_scam", nil)
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Runs  []runlog.Summary `json:"runs"`
		Count int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	req = httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Verdicts map[string]int `json:"verdicts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Verdicts["not_scam"])
}

func TestHandleHealth(t *testing.T) {
	runner := &stubRunner{assessment: cleanAssessment("wf5")}
	srv, _ := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestWebhookRoute(t *testing.T) {
	runner := &stubRunner{assessment: cleanAssessment("wf6")}
	srv, _ := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodPost, "/v1/triggers/document",
		bytes.NewBufferString(`{"subject": "direct record"}`))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, runner.inputs, 1)
}

func TestRateLimitMiddleware(t *testing.T) {
	runner := &stubRunner{assessment: cleanAssessment("wf7")}
	runs, err := runlog.NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { runs.Close() })

	srv := NewServer(runner, runs, nil, WithRateLimiter(NewRateLimiter(2, 2)))
	handler := srv.Routes()

	var limited bool
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited, "expected some requests to be rate limited")
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(1000, 1)
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	// A different client has its own bucket.
	assert.True(t, rl.Allow("5.6.7.8"))
}
