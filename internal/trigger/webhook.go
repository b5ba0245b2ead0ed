// Package trigger implements webhook and cron entry points for triage runs.
package trigger

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/veridex-io/mailguard/internal/workflow"
)

// AssessmentRunner is the interface triggers use to start a triage run.
type AssessmentRunner interface {
	Assess(ctx context.Context, input interface{}) *workflow.RiskAssessment
}

// Webhook requests longer than this are cut off; a single run's tool and
// time budgets are far smaller.
const webhookTimeout = 2 * time.Minute

// WebhookHandler accepts documents pushed over HTTP and runs them through
// the pipeline synchronously, answering with the assessment.
type WebhookHandler struct {
	runner AssessmentRunner
	token  string
}

// NewWebhookHandler creates a handler. An empty token disables auth,
// intended for local use only.
func NewWebhookHandler(runner AssessmentRunner, token string) *WebhookHandler {
	return &WebhookHandler{runner: runner, token: token}
}

// documentRequest is the webhook body. Exactly one of the fields carries
// the document; a bare JSON object body is also accepted as a record.
type documentRequest struct {
	Document json.RawMessage `json:"document"`
}

// HandleDocument runs one pushed document through the pipeline.
func (wh *WebhookHandler) HandleDocument(w http.ResponseWriter, r *http.Request) {
	if !wh.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or missing token"})
		return
	}

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	input, err := decodeDocument(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), webhookTimeout)
	defer cancel()

	assessment := wh.runner.Assess(ctx, input)
	log.Info().
		Str("workflow_id", assessment.Metadata.WorkflowID).
		Str("verdict", assessment.IsScam).
		Msg("webhook_document_assessed")
	writeJSON(w, http.StatusOK, assessment)
}

func (wh *WebhookHandler) authorized(r *http.Request) bool {
	if wh.token == "" {
		return true
	}
	auth := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(auth), []byte(wh.token)) == 1
}

// decodeDocument maps a webhook body onto a pipeline input. A wrapper
// object's "document" field wins; otherwise the body itself is the
// document, as either a JSON object (record) or a JSON string (text).
func decodeDocument(body json.RawMessage) (interface{}, error) {
	var wrapper documentRequest
	if err := json.Unmarshal(body, &wrapper); err == nil && len(wrapper.Document) > 0 {
		body = wrapper.Document
	}

	var record map[string]interface{}
	if err := json.Unmarshal(body, &record); err == nil {
		return record, nil
	}
	var text string
	if err := json.Unmarshal(body, &text); err == nil {
		return text, nil
	}
	return nil, errUnsupportedBody
}

var errUnsupportedBody = &unsupportedBodyError{}

type unsupportedBodyError struct{}

func (*unsupportedBodyError) Error() string {
	return "body must be a JSON object, a JSON string, or wrap one in a \"document\" field"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
