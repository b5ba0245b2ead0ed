package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/veridex-io/mailguard/internal/doctor"
)

var (
	doctorJSON      bool
	doctorSkipTools bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check mailguard configuration and runtime health",
	Long: `Runs diagnostic checks: configuration, data directory, reasoning
provider keys, the run-log database and tool server connectivity.
Exits non-zero when any check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := tracer.Start(cmd.Context(), "doctor")
		defer span.End()

		report := doctor.Run(ctx, doctor.Options{SkipTools: doctorSkipTools})

		if doctorJSON {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		} else {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STATUS\tCHECK\tMESSAGE")
			for _, c := range report.Checks {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Status, c.Name, c.Message)
				if c.Fix != "" && c.Status != "pass" {
					fmt.Fprintf(w, "\t\tfix: %s\n", c.Fix)
				}
			}
			w.Flush()
			fmt.Printf("\n%d pass, %d warn, %d fail\n",
				report.Summary.Pass, report.Summary.Warn, report.Summary.Fail)
		}

		if report.Status == "fail" {
			return fmt.Errorf("%d check(s) failed", report.Summary.Fail)
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output the report as JSON")
	doctorCmd.Flags().BoolVar(&doctorSkipTools, "skip-tools", false, "skip tool server connectivity checks")
	rootCmd.AddCommand(doctorCmd)
}
