// Package doctor provides health checks for mailguard configuration and
// runtime. Used by `mailguard doctor` before deploying the triage pipeline.
package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/veridex-io/mailguard/internal/config"
	"github.com/veridex-io/mailguard/internal/mcp"
	"github.com/veridex-io/mailguard/internal/runlog"
)

// CheckResult is a single doctor check outcome.
type CheckResult struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Status   string `json:"status"` // pass, warn, fail
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

// Summary tallies pass/warn/fail counts.
type Summary struct {
	Pass int `json:"pass"`
	Warn int `json:"warn"`
	Fail int `json:"fail"`
}

// Report is the complete doctor output.
type Report struct {
	Status  string        `json:"status"` // worst of all checks
	Checks  []CheckResult `json:"checks"`
	Summary Summary       `json:"summary"`
}

// Options controls which check categories to run.
type Options struct {
	SkipTools bool // Skip tool server connectivity checks (for CI/offline)
}

// Run executes all doctor checks and returns a report.
func Run(ctx context.Context, opts Options) *Report {
	report := &Report{}

	cfg, err := config.Load()
	if err != nil {
		report.Checks = append(report.Checks, CheckResult{
			Name: "config_load", Category: "config", Status: "fail",
			Message: fmt.Sprintf("Cannot load config: %v", err),
			Fix:     "Check MAILGUARD_* env vars and mailguard.config.yaml",
		})
	} else {
		report.Checks = append(report.Checks, checkDataDir(cfg))
		report.Checks = append(report.Checks, checkLLMKeys())
		report.Checks = append(report.Checks, checkRunLogDB(cfg)...)
		if !opts.SkipTools {
			report.Checks = append(report.Checks, checkToolServers(ctx, cfg)...)
		}
	}

	for _, c := range report.Checks {
		switch c.Status {
		case "pass":
			report.Summary.Pass++
		case "warn":
			report.Summary.Warn++
		case "fail":
			report.Summary.Fail++
		}
	}

	report.Status = "pass"
	if report.Summary.Warn > 0 {
		report.Status = "warn"
	}
	if report.Summary.Fail > 0 {
		report.Status = "fail"
	}
	return report
}

func checkDataDir(cfg *config.Config) CheckResult {
	if err := cfg.EnsureDataDir(); err != nil {
		return CheckResult{
			Name: "data_dir_writable", Category: "config", Status: "fail",
			Message: fmt.Sprintf("%s — %v", cfg.DataDir, err),
			Fix:     "Ensure directory exists and is writable",
		}
	}
	testFile := filepath.Join(cfg.DataDir, ".doctor-write-test")
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return CheckResult{
			Name: "data_dir_writable", Category: "config", Status: "fail",
			Message: fmt.Sprintf("%s not writable — %v", cfg.DataDir, err),
		}
	}
	_ = os.Remove(testFile)
	return CheckResult{
		Name: "data_dir_writable", Category: "config", Status: "pass",
		Message: fmt.Sprintf("%s (writable)", cfg.DataDir),
	}
}

func checkLLMKeys() CheckResult {
	hasOpenAI := os.Getenv("OPENAI_API_KEY") != ""
	hasAnthropic := os.Getenv("ANTHROPIC_API_KEY") != ""
	if !hasOpenAI && !hasAnthropic {
		return CheckResult{
			Name: "llm_keys", Category: "config", Status: "fail",
			Message: "No OPENAI_API_KEY or ANTHROPIC_API_KEY found",
			Fix:     "Set at least one reasoning provider key",
		}
	}
	var keys []string
	if hasOpenAI {
		keys = append(keys, "openai")
	}
	if hasAnthropic {
		keys = append(keys, "anthropic")
	}
	return CheckResult{
		Name: "llm_keys", Category: "config", Status: "pass",
		Message: fmt.Sprintf("%v (env)", keys),
	}
}

func checkRunLogDB(cfg *config.Config) []CheckResult {
	store, err := runlog.NewStore(cfg.RunLogDBPath())
	if err != nil {
		return []CheckResult{{
			Name: "runlog_db", Category: "config", Status: "fail",
			Message: fmt.Sprintf("%v", err),
		}}
	}
	defer store.Close()

	results := []CheckResult{{
		Name: "runlog_db", Category: "config", Status: "pass",
		Message: cfg.RunLogDBPath(),
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	counts, countErr := store.VerdictCounts(ctx, time.Time{}, time.Time{})
	if countErr == nil {
		total := 0
		for _, n := range counts {
			total += n
		}
		fi, _ := os.Stat(cfg.RunLogDBPath())
		sizeStr := "unknown"
		if fi != nil {
			sizeStr = fmt.Sprintf("%.1f MB", float64(fi.Size())/(1024*1024))
		}
		results = append(results, CheckResult{
			Name: "runlog_stats", Category: "system", Status: "pass",
			Message: fmt.Sprintf("%d runs, %s", total, sizeStr),
		})
	}
	return results
}

// checkToolServers dials every configured tool server and lists its tools.
// Connectivity failures fail the check; an empty tool list only warns,
// since a freshly started server may register tools lazily.
func checkToolServers(ctx context.Context, cfg *config.Config) []CheckResult {
	client := mcp.NewClient(mcp.NewRegistry(cfg.ToolEndpoint, cfg.ToolTimeout, cfg.ToolEndpoints))

	servers := client.Servers()
	if len(servers) == 0 {
		return []CheckResult{{
			Name: "tool_servers", Category: "tools", Status: "warn",
			Message: "No tool servers configured",
			Fix:     "Set MAILGUARD_TOOL_ENDPOINT or tool_endpoints in config",
		}}
	}

	var results []CheckResult
	for _, server := range servers {
		start := time.Now()
		tools, err := client.ListTools(ctx, server)
		latency := time.Since(start)
		if err != nil {
			results = append(results, CheckResult{
				Name: "tool_server_" + server, Category: "tools", Status: "fail",
				Message: fmt.Sprintf("%s — %v", cfg.EndpointFor(server), err),
				Fix:     "Check the tool server is running and the endpoint is reachable",
			})
			continue
		}
		status := "pass"
		if len(tools) == 0 {
			status = "warn"
		}
		results = append(results, CheckResult{
			Name: "tool_server_" + server, Category: "tools", Status: status,
			Message: fmt.Sprintf("%s — %d tool(s), %dms", cfg.EndpointFor(server), len(tools), latency.Milliseconds()),
		})
	}
	return results
}
