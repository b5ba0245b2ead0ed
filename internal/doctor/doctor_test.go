package doctor

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	viper.Set("data_dir", t.TempDir())
	t.Cleanup(func() { viper.Set("data_dir", "") })
}

func checkByName(t *testing.T, report *Report, name string) CheckResult {
	t.Helper()
	for _, c := range report.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not in report", name)
	return CheckResult{}
}

func TestRunAllPass(t *testing.T) {
	setupEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	report := Run(context.Background(), Options{SkipTools: true})

	require.NotEmpty(t, report.Checks)
	assert.Equal(t, "pass", report.Status)
	assert.Zero(t, report.Summary.Fail)

	assert.Equal(t, "pass", checkByName(t, report, "data_dir_writable").Status)
	assert.Equal(t, "pass", checkByName(t, report, "llm_keys").Status)
	assert.Equal(t, "pass", checkByName(t, report, "runlog_db").Status)
}

func TestRunMissingLLMKeys(t *testing.T) {
	setupEnv(t)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	report := Run(context.Background(), Options{SkipTools: true})

	assert.Equal(t, "fail", report.Status)
	c := checkByName(t, report, "llm_keys")
	assert.Equal(t, "fail", c.Status)
	assert.NotEmpty(t, c.Fix)
}

func TestRunToolServersUnreachable(t *testing.T) {
	setupEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	viper.Set("tool_endpoint", "ws://127.0.0.1:1")
	defer viper.Set("tool_endpoint", "ws://localhost:7030")

	report := Run(context.Background(), Options{})

	assert.Equal(t, "fail", report.Status)
	c := checkByName(t, report, "tool_server_rag-tools")
	assert.Equal(t, "fail", c.Status)
	assert.Contains(t, c.Message, "ws://127.0.0.1:1")
}

func TestRunStatsReported(t *testing.T) {
	setupEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	report := Run(context.Background(), Options{SkipTools: true})
	c := checkByName(t, report, "runlog_stats")
	assert.Equal(t, "pass", c.Status)
	assert.Contains(t, c.Message, "0 runs")
}
