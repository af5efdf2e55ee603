package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantfold/kagglemcp/cmd/kagglemcp/commands"
	"github.com/quantfold/kagglemcp/config"
	"github.com/quantfold/kagglemcp/logger"
)

var rootCmd = &cobra.Command{
	Use:   "kagglemcp",
	Short: "kagglemcp - Kaggle MCP server",
	Long: `kagglemcp exposes the Kaggle platform (competitions, datasets, models)
to MCP clients as tools and resources.

Available commands:
  serve   - Start the MCP server on stdio
  version - Show version information

Examples:
  kagglemcp serve               # Start the server
  kagglemcp serve --json-logs   # Structured log output
  kagglemcp version             # Show build information`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs || cfg.Log.JSON, cfg.Log.Level); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
