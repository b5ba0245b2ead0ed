// Package testutil provides shared test helpers and mocks for mailguard
// tests.
package testutil

import (
	"context"
	"sync"

	"github.com/veridex-io/mailguard/internal/llm"
)

// MockProvider implements llm.Provider for tests without live API calls.
// When Content is empty, Generate returns "mock response from " +
// ProviderName; otherwise uses Content. Set Err to simulate provider errors.
type MockProvider struct {
	ProviderName string
	Content      string
	Err          error
}

// Name returns the provider identifier (implements llm.Provider).
func (m *MockProvider) Name() string { return m.ProviderName }

// Generate returns a canned response or the configured error.
func (m *MockProvider) Generate(_ context.Context, req *llm.Request) (*llm.Response, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	content := m.Content
	if content == "" {
		content = "mock response from " + m.ProviderName
	}
	return &llm.Response{
		Content:      content,
		FinishReason: "stop",
		InputTokens:  10,
		OutputTokens: 20,
		Model:        req.Model,
	}, nil
}

// EstimateCost returns a fixed cost for tests.
func (m *MockProvider) EstimateCost(_ string, _, _ int) float64 { return 0.001 }

// SequenceProvider implements llm.Provider returning a fixed sequence of
// contents, one per Generate call; calls past the end get the last entry.
// Entries holding an error return that error instead. Tracks received
// requests for assertions.
type SequenceProvider struct {
	mu        sync.Mutex
	Replies   []SequenceReply
	CallCount int
	Requests  []*llm.Request
}

// SequenceReply is one scripted Generate outcome.
type SequenceReply struct {
	Content string
	Err     error
}

// Name returns "openai" so provider-specific paths behave as in production.
func (p *SequenceProvider) Name() string { return "openai" }

// Generate returns the next scripted reply.
func (p *SequenceProvider) Generate(_ context.Context, req *llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	idx := p.CallCount
	p.CallCount++
	p.Requests = append(p.Requests, req)
	replies := p.Replies
	p.mu.Unlock()

	if len(replies) == 0 {
		return &llm.Response{Content: "{}", FinishReason: "stop", Model: req.Model}, nil
	}
	if idx >= len(replies) {
		idx = len(replies) - 1
	}
	reply := replies[idx]
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &llm.Response{
		Content:      reply.Content,
		FinishReason: "stop",
		InputTokens:  10,
		OutputTokens: 20,
		Model:        req.Model,
	}, nil
}

// EstimateCost returns a fixed cost for tests.
func (p *SequenceProvider) EstimateCost(_ string, _, _ int) float64 { return 0.001 }
