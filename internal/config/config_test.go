package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	initViper()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultToolEndpoint, cfg.ToolEndpoint)
	assert.Equal(t, 5*time.Second, cfg.ToolTimeout)
	assert.Equal(t, DefaultMaxToolCalls, cfg.MaxToolCalls)
	assert.Equal(t, 6*time.Second, cfg.TimeBudget)
	assert.Equal(t, DefaultReasoningModel, cfg.ReasoningModel)
	assert.Equal(t, DefaultReasoningAttempts, cfg.ReasoningAttempts)
	assert.Empty(t, cfg.WebhookToken)
	assert.Empty(t, cfg.SweepSchedule)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	initViper()

	viper.Set(KeyDataDir, "/tmp/mg-test")
	viper.Set(KeyMaxToolCalls, 8)
	viper.Set(KeyTimeBudgetSeconds, 12.5)
	viper.Set(KeySweepSchedule, "0 7 * * *")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/mg-test", cfg.DataDir)
	assert.Equal(t, 8, cfg.MaxToolCalls)
	assert.Equal(t, 12500*time.Millisecond, cfg.TimeBudget)
	assert.Equal(t, "0 7 * * *", cfg.SweepSchedule)
	assert.Equal(t, "/tmp/mg-test/runs.db", cfg.RunLogDBPath())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"zero tool calls", KeyMaxToolCalls, 0},
		{"negative tool calls", KeyMaxToolCalls, -1},
		{"zero time budget", KeyTimeBudgetSeconds, 0.0},
		{"zero tool timeout", KeyToolTimeoutSeconds, 0.0},
		{"zero reasoning attempts", KeyReasoningAttempts, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			defer viper.Reset()
			initViper()
			viper.Set(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestEndpointFor(t *testing.T) {
	cfg := &Config{
		ToolEndpoint: "ws://localhost:7030",
		ToolEndpoints: map[string]string{
			"rag-tools": "ws://rag.internal:7040",
			"empty":     "",
		},
	}
	assert.Equal(t, "ws://rag.internal:7040", cfg.EndpointFor("rag-tools"))
	assert.Equal(t, "ws://localhost:7030", cfg.EndpointFor("gmail-tools"))
	assert.Equal(t, "ws://localhost:7030", cfg.EndpointFor("empty"))
}
