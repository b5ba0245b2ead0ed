package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridex-io/mailguard/internal/workflow"
)

type recordingRunner struct {
	inputs []interface{}
}

func (r *recordingRunner) Assess(_ context.Context, input interface{}) *workflow.RiskAssessment {
	r.inputs = append(r.inputs, input)
	return &workflow.RiskAssessment{
		IsScam:          workflow.VerdictSuspicious,
		ConfidenceLevel: 0.4,
		ScamProbability: 50,
		Metadata:        workflow.ProcessingMetadata{WorkflowID: "hook1"},
	}
}

func TestHandleDocumentAuth(t *testing.T) {
	runner := &recordingRunner{}
	wh := NewWebhookHandler(runner, "secret-token")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer secret-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/triggers/document",
				bytes.NewBufferString(`{"document": "check this"}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			wh.HandleDocument(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	// Only the authorized request reached the pipeline.
	assert.Len(t, runner.inputs, 1)
}

func TestHandleDocumentNoTokenAllowsAll(t *testing.T) {
	runner := &recordingRunner{}
	wh := NewWebhookHandler(runner, "")

	req := httptest.NewRequest(http.MethodPost, "/v1/triggers/document",
		bytes.NewBufferString(`{"subject": "bare record"}`))
	rec := httptest.NewRecorder()
	wh.HandleDocument(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var a workflow.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, "hook1", a.Metadata.WorkflowID)
}

func TestHandleDocumentBadBodies(t *testing.T) {
	runner := &recordingRunner{}
	wh := NewWebhookHandler(runner, "")

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"document":`},
		{"array body", `[1, 2, 3]`},
		{"number body", `42`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/triggers/document",
				bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			wh.HandleDocument(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, runner.inputs)
}

func TestDecodeDocument(t *testing.T) {
	tests := []struct {
		name string
		body string
		want interface{}
	}{
		{
			name: "wrapped record",
			body: `{"document": {"subject": "hi"}}`,
			want: map[string]interface{}{"subject": "hi"},
		},
		{
			name: "wrapped text",
			body: `{"document": "plain"}`,
			want: "plain",
		},
		{
			name: "bare record",
			body: `{"subject": "hi"}`,
			want: map[string]interface{}{"subject": "hi"},
		},
		{
			name: "bare text",
			body: `"plain"`,
			want: "plain",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeDocument(json.RawMessage(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
