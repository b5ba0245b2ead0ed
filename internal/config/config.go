// Package config holds operator-level configuration for a mailguard
// installation: data directory, tool endpoint, budgets, and model selection.
// Values come from env vars (MAILGUARD_*) or mailguard.config.yaml; every
// key has a working default so `mailguard assess` runs out of the box.
//
// Provider API keys (OPENAI_API_KEY, ANTHROPIC_API_KEY) are read from the
// plain environment, matching how the tool servers themselves are deployed.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Viper keys. Each maps to an env var with the MAILGUARD_ prefix
// (e.g. "max_tool_calls" → MAILGUARD_MAX_TOOL_CALLS) and to a YAML field
// in mailguard.config.yaml.
const (
	KeyDataDir            = "data_dir"
	KeyToolEndpoint       = "tool_endpoint"
	KeyToolTimeoutSeconds = "tool_timeout_seconds"
	KeyMaxToolCalls       = "max_tool_calls"
	KeyTimeBudgetSeconds  = "time_budget_seconds"
	KeyReasoningModel     = "reasoning_model"
	KeyReasoningAttempts  = "reasoning_attempts"
	KeyWebhookToken       = "webhook_token"
	KeySweepSchedule      = "sweep_schedule"
)

// Defaults.
const (
	DefaultToolEndpoint       = "ws://localhost:7030"
	DefaultToolTimeoutSeconds = 5.0
	DefaultMaxToolCalls       = 5
	DefaultTimeBudgetSeconds  = 6.0
	DefaultReasoningModel     = "gpt-4o-mini"
	DefaultReasoningAttempts  = 2
)

// Config is the resolved operator configuration for a mailguard process.
type Config struct {
	DataDir           string            // base directory for all state (~/.mailguard)
	ToolEndpoint      string            // default WebSocket endpoint for tool servers
	ToolEndpoints     map[string]string // per-server overrides, keyed by server name
	ToolTimeout       time.Duration     // per-call timeout for tool invocations
	MaxToolCalls      int               // call-count budget per workflow run
	TimeBudget        time.Duration     // wall-clock budget per workflow run
	ReasoningModel    string            // model used for router/planner/analyst/supervisor calls
	ReasoningAttempts int               // attempts per reasoning call before fallback
	WebhookToken      string            // shared token for the inbound document webhook ("" = open)
	SweepSchedule     string            // cron expression for scheduled mailbox sweeps ("" = disabled)
}

// RunLogDBPath returns the full path to the run-log SQLite database.
func (c *Config) RunLogDBPath() string {
	return filepath.Join(c.DataDir, "runs.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o700)
}

// EndpointFor resolves the tool endpoint for a logical server name,
// falling back to the default endpoint when no override exists.
func (c *Config) EndpointFor(server string) string {
	if url, ok := c.ToolEndpoints[server]; ok && url != "" {
		return url
	}
	return c.ToolEndpoint
}

func init() {
	initViper()
}

// initViper installs the env binding and defaults on the global viper.
// Called from init and again by tests after viper.Reset.
func initViper() {
	viper.SetEnvPrefix("MAILGUARD")
	viper.AutomaticEnv()
	viper.SetDefault(KeyToolEndpoint, DefaultToolEndpoint)
	viper.SetDefault(KeyToolTimeoutSeconds, DefaultToolTimeoutSeconds)
	viper.SetDefault(KeyMaxToolCalls, DefaultMaxToolCalls)
	viper.SetDefault(KeyTimeBudgetSeconds, DefaultTimeBudgetSeconds)
	viper.SetDefault(KeyReasoningModel, DefaultReasoningModel)
	viper.SetDefault(KeyReasoningAttempts, DefaultReasoningAttempts)
}

// Load reads configuration from viper (env vars merged over config file
// and defaults) and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:           resolveDataDir(),
		ToolEndpoint:      viper.GetString(KeyToolEndpoint),
		ToolEndpoints:     viper.GetStringMapString("tool_endpoints"),
		ToolTimeout:       secondsToDuration(viper.GetFloat64(KeyToolTimeoutSeconds)),
		MaxToolCalls:      viper.GetInt(KeyMaxToolCalls),
		TimeBudget:        secondsToDuration(viper.GetFloat64(KeyTimeBudgetSeconds)),
		ReasoningModel:    viper.GetString(KeyReasoningModel),
		ReasoningAttempts: viper.GetInt(KeyReasoningAttempts),
		WebhookToken:      viper.GetString(KeyWebhookToken),
		SweepSchedule:     viper.GetString(KeySweepSchedule),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func resolveDataDir() string {
	if dir := viper.GetString(KeyDataDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mailguard"
	}
	return filepath.Join(home, ".mailguard")
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (c *Config) validate() error {
	if c.MaxToolCalls <= 0 {
		return fmt.Errorf("max_tool_calls must be positive (got %d)", c.MaxToolCalls)
	}
	if c.TimeBudget <= 0 {
		return fmt.Errorf("time_budget_seconds must be positive")
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("tool_timeout_seconds must be positive")
	}
	if c.ReasoningAttempts <= 0 {
		return fmt.Errorf("reasoning_attempts must be positive (got %d)", c.ReasoningAttempts)
	}
	return nil
}
