package commands

import (
	"github.com/spf13/cobra"

	"github.com/quantfold/kagglemcp/config"
	"github.com/quantfold/kagglemcp/errors"
	"github.com/quantfold/kagglemcp/facade"
	"github.com/quantfold/kagglemcp/kaggle"
	"github.com/quantfold/kagglemcp/logger"
	"github.com/quantfold/kagglemcp/server"
)

// ServeCmd starts the MCP server on stdio
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Kaggle MCP server on stdio",
	Long: `Start the MCP server. The server speaks the Model Context Protocol over
stdin/stdout; logs go to stderr.

Credentials are read from KAGGLE_USERNAME / KAGGLE_KEY or ~/.kaggle/kaggle.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if !cfg.HasCredentials() {
			return errors.WithHint(
				errors.New("no Kaggle API credentials found"),
				"set KAGGLE_USERNAME and KAGGLE_KEY, or place kaggle.json in ~/.kaggle/")
		}

		client := kaggle.NewAPIClient(cfg)
		f := facade.New(client, cfg)

		logger.Infow("starting MCP server",
			logger.FieldComponent, "server",
			"download_path", cfg.DownloadPath)

		return server.New(f).Serve()
	},
}
