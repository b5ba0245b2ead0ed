package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
)

// NewOpenAICompatibleServer starts an httptest.Server answering
// POST /v1/chat/completions with a minimal valid OpenAI-style response.
// Content is the assistant message body. Caller must call server.Close()
// or register t.Cleanup(server.Close).
func NewOpenAICompatibleServer(content string) *httptest.Server {
	if content == "" {
		content = "mock response"
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]interface{}{{
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{
				"prompt_tokens":     10,
				"completion_tokens": 20,
				"total_tokens":      30,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

// NewAnthropicCompatibleServer starts an httptest.Server answering the
// Messages API with the given text content.
func NewAnthropicCompatibleServer(content string) *httptest.Server {
	if content == "" {
		content = "mock response"
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"id":          "msg-test",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": "end_turn",
			"content": []map[string]string{
				{"type": "text", "text": content},
			},
			"usage": map[string]int{
				"input_tokens":  10,
				"output_tokens": 20,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}
