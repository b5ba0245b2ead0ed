package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Reasoner issues system-prompted JSON calls against a provider with a
// bounded number of attempts. Every reasoning stage in the workflow goes
// through here so retries, parsing, and metrics stay uniform.
type Reasoner struct {
	provider    Provider
	model       string
	attempts    int
	temperature float64
	maxTokens   int
}

// NewReasoner creates a reasoner. attempts <= 0 defaults to 2.
func NewReasoner(provider Provider, model string, attempts int) *Reasoner {
	if attempts <= 0 {
		attempts = 2
	}
	return &Reasoner{
		provider:    provider,
		model:       model,
		attempts:    attempts,
		temperature: 0.7,
		maxTokens:   400,
	}
}

// Model returns the configured model identifier.
func (r *Reasoner) Model() string { return r.model }

// ChatJSON sends the payload as a JSON user message under the given system
// prompt and parses the reply as a JSON object. It tries up to the
// configured number of attempts; the last error is returned when all
// attempts fail. Callers fall back to deterministic logic on error.
func (r *Reasoner) ChatJSON(ctx context.Context, stage, system string, payload interface{}) (map[string]interface{}, error) {
	userJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshalling payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		start := time.Now()
		resp, err := r.provider.Generate(ctx, &Request{
			Model: r.model,
			Messages: []Message{
				{Role: "system", Content: system},
				{Role: "user", Content: string(userJSON)},
			},
			Temperature: r.temperature,
			MaxTokens:   r.maxTokens,
		})
		if err != nil {
			lastErr = err
			log.Warn().
				Str("stage", stage).
				Int("attempt", attempt).
				Err(err).
				Msg("reasoning_call_failed")
			continue
		}

		cost := r.provider.EstimateCost(r.model, resp.InputTokens, resp.OutputTokens)
		RecordReasoningMetrics(ctx, stage, r.model, cost, time.Since(start))

		obj, err := parseJSONObject(resp.Content)
		if err != nil {
			lastErr = err
			log.Warn().
				Str("stage", stage).
				Int("attempt", attempt).
				Err(err).
				Msg("reasoning_reply_malformed")
			continue
		}
		return obj, nil
	}
	return nil, lastErr
}

// parseJSONObject decodes a reply into a JSON object, tolerating markdown
// code fences and surrounding prose around the object.
func parseJSONObject(content string) (map[string]interface{}, error) {
	text := strings.TrimSpace(content)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.Index(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	if !strings.HasPrefix(text, "{") {
		if start := strings.Index(text, "{"); start >= 0 {
			if end := strings.LastIndex(text, "}"); end > start {
				text = text[start : end+1]
			}
		}
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	return obj, nil
}
