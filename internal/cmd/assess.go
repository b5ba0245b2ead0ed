package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/veridex-io/mailguard/internal/config"
)

var (
	assessFile  string
	assessStdin bool
)

var assessCmd = &cobra.Command{
	Use:   "assess [text]",
	Short: "Assess a document for scam signals",
	Long: `Assess runs one document through the triage pipeline and prints the
risk assessment as JSON on stdout.

The document is given as a plain-text argument, as a file (--file), or on
stdin (--stdin). Files ending in .json are parsed as structured records
(e.g. an exported email); anything else is treated as raw content.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAssess,
}

func init() {
	assessCmd.Flags().StringVarP(&assessFile, "file", "f", "", "read the document from a file")
	assessCmd.Flags().BoolVar(&assessStdin, "stdin", false, "read the document from stdin")
	rootCmd.AddCommand(assessCmd)
}

func runAssess(cmd *cobra.Command, args []string) error {
	ctx, span := tracer.Start(cmd.Context(), "assess")
	defer span.End()

	input, err := assessInput(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	runner, _, runs, err := buildRunner(cfg)
	if err != nil {
		return err
	}
	defer runs.Close()

	assessment := runner.Assess(ctx, input)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(assessment)
}

// assessInput resolves the document from the argument, --file or --stdin.
func assessInput(args []string) (interface{}, error) {
	switch {
	case assessFile != "":
		raw, err := os.ReadFile(assessFile)
		if err != nil {
			return nil, fmt.Errorf("reading document: %w", err)
		}
		return documentFromRaw(raw), nil
	case assessStdin:
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return documentFromRaw(raw), nil
	case len(args) == 1:
		return args[0], nil
	}
	return nil, fmt.Errorf("provide a document: text argument, --file, or --stdin")
}

// documentFromRaw decides how raw input enters the pipeline: a JSON object
// becomes a structured record, everything else stays raw bytes for the
// binary conversion path.
func documentFromRaw(raw []byte) interface{} {
	var record map[string]interface{}
	if err := json.Unmarshal(raw, &record); err == nil {
		return record
	}
	return raw
}
