package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veridex-io/mailguard/internal/config"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools advertised by the configured tool servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := tracer.Start(cmd.Context(), "tools")
		defer span.End()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		client := buildToolClient(cfg)

		for _, server := range client.Servers() {
			tools, err := client.ListTools(ctx, server)
			if err != nil {
				fmt.Printf("%s\tunreachable: %v\n", server, err)
				continue
			}
			for _, tool := range tools {
				fmt.Printf("%s\t%s\n", server, tool)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
