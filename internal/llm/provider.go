// Package llm provides the reasoning-call layer: LLM providers behind a
// uniform interface, and a Reasoner that issues system-prompted JSON calls
// with bounded retries. Reasoning calls are treated as fallible RPCs, the
// same reliability shape as tool invocations.
package llm

import (
	"context"
	"errors"
	"time"
)

// TimeoutReasoningCall bounds every provider call.
const TimeoutReasoningCall = 30 * time.Second

// Domain errors for the llm package.
var (
	ErrProviderNotAvailable = errors.New("provider not available")
	ErrUnknownModel         = errors.New("unknown model prefix")
	ErrNotJSON              = errors.New("reply is not a JSON object")
)

// Provider is the interface all LLM providers must implement.
type Provider interface {
	// Name returns the provider identifier (e.g. "openai", "anthropic").
	Name() string
	// Generate sends a completion request and returns the response.
	Generate(ctx context.Context, req *Request) (*Response, error)
	// EstimateCost estimates the cost in EUR for the given model and token counts.
	EstimateCost(model string, inputTokens, outputTokens int) float64
}

// Request represents an LLM generation request.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Message represents a chat message.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// Response represents an LLM generation response.
type Response struct {
	Content      string
	FinishReason string
	InputTokens  int
	OutputTokens int
	Model        string
}
