package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/veridex-io/mailguard/internal/config"
	"github.com/veridex-io/mailguard/internal/runlog"
)

var (
	runsRoute   string
	runsVerdict string
	runsLimit   int
	runsFormat  string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect persisted triage runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <workflow-id>",
	Short: "Print the full artifact of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export runs as JSON or CSV",
	RunE:  runRunsExport,
}

func init() {
	for _, c := range []*cobra.Command{runsListCmd, runsExportCmd} {
		c.Flags().StringVar(&runsRoute, "route", "", "filter by route")
		c.Flags().StringVar(&runsVerdict, "verdict", "", "filter by verdict")
		c.Flags().IntVar(&runsLimit, "limit", 50, "maximum number of runs")
	}
	runsExportCmd.Flags().StringVar(&runsFormat, "format", "json", "export format (json, csv)")

	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}

func openRunStore() (*runlog.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return runlog.NewStore(cfg.RunLogDBPath())
}

func runRunsList(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "runs.list")
	defer span.End()

	store, err := openRunStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(ctx, runsRoute, runsVerdict, time.Time{}, time.Time{}, runsLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WORKFLOW\tSTARTED\tROUTE\tVERDICT\tTIME\tCALLS\tERRORS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%d\t%d\n",
			r.WorkflowID, r.StartedAt.Format(time.RFC3339), r.Route, r.Verdict,
			r.TotalTime, r.ToolCalls, r.Errors)
	}
	return w.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "runs.show")
	defer span.End()

	store, err := openRunStore()
	if err != nil {
		return err
	}
	defer store.Close()

	artifact, err := store.Get(ctx, args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(artifact)
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "runs.export")
	defer span.End()

	store, err := openRunStore()
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.List(ctx, runsRoute, runsVerdict, time.Time{}, time.Time{}, runsLimit)
	if err != nil {
		return err
	}
	records := make([]runlog.ExportRecord, 0, len(summaries))
	for _, sum := range summaries {
		artifact, err := store.Get(ctx, sum.WorkflowID)
		if err != nil {
			continue
		}
		records = append(records, runlog.ToExportRecord(artifact))
	}

	switch runsFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "csv":
		w := csv.NewWriter(os.Stdout)
		header := []string{"workflow_id", "started_at", "status", "route", "verdict",
			"total_time", "tool_calls", "tool_errors", "confidence_level", "scam_probability"}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, r := range records {
			row := []string{
				r.WorkflowID, r.StartedAt.Format(time.RFC3339), r.Status, r.Route, r.Verdict,
				strconv.FormatFloat(r.TotalTime, 'f', 3, 64),
				strconv.Itoa(r.ToolCalls), strconv.Itoa(r.ToolErrors),
				strconv.FormatFloat(r.ConfidenceLevel, 'f', 2, 64),
				strconv.FormatFloat(r.ScamProbability, 'f', 1, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	}
	return fmt.Errorf("unknown format %q (want json or csv)", runsFormat)
}
