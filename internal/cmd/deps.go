package cmd

import (
	"fmt"
	"os"

	"github.com/veridex-io/mailguard/internal/config"
	"github.com/veridex-io/mailguard/internal/llm"
	"github.com/veridex-io/mailguard/internal/mcp"
	"github.com/veridex-io/mailguard/internal/runlog"
	"github.com/veridex-io/mailguard/internal/workflow"
)

// buildToolClient wires the tool client from the configured endpoints.
func buildToolClient(cfg *config.Config) *mcp.Client {
	registry := mcp.NewRegistry(cfg.ToolEndpoint, cfg.ToolTimeout, cfg.ToolEndpoints)
	return mcp.NewClient(registry)
}

// buildReasoner wires the reasoning client for the configured model.
// Provider API keys come from the plain environment.
func buildReasoner(cfg *config.Config) (*llm.Reasoner, error) {
	providerName, err := llm.InferProvider(cfg.ReasoningModel)
	if err != nil {
		return nil, fmt.Errorf("reasoning model %q: %w", cfg.ReasoningModel, err)
	}

	var provider llm.Provider
	switch providerName {
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set for model %q", cfg.ReasoningModel)
		}
		provider = llm.NewOpenAIProvider(key)
	case "anthropic":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set for model %q", cfg.ReasoningModel)
		}
		provider = llm.NewAnthropicProvider(key)
	default:
		return nil, fmt.Errorf("no provider for model %q", cfg.ReasoningModel)
	}

	return llm.NewReasoner(provider, cfg.ReasoningModel, cfg.ReasoningAttempts), nil
}

// buildRunner wires the full pipeline: tool client, reasoner and run store.
// The caller owns closing the returned store.
func buildRunner(cfg *config.Config) (*workflow.Runner, *mcp.Client, *runlog.Store, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	tools := buildToolClient(cfg)
	reasoner, err := buildReasoner(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	runs, err := runlog.NewStore(cfg.RunLogDBPath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening run store: %w", err)
	}

	runner := workflow.NewRunner(workflow.RunnerConfig{
		Invoker:      tools,
		Reasoner:     reasoner,
		Runs:         runs,
		MaxToolCalls: cfg.MaxToolCalls,
		TimeBudget:   cfg.TimeBudget,
	})
	return runner, tools, runs, nil
}
