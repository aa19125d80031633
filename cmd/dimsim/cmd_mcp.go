package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/slateworks/dimsim/internal/config"
	"github.com/slateworks/dimsim/internal/logging"
	"github.com/slateworks/dimsim/internal/mcp"
)

func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-serve",
		Short: "Run as an MCP server on stdio",
		Long: `Run dimsim as a Model Context Protocol server over stdio.

Exposes scenario generation, schema evaluation, scenario description,
and scaffold generation as tools for agent clients. Logs go to stderr;
at debug level and below, tool calls are also recorded to an audit
trail under ~/.dimsim.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := loadAppConfig(cmd)
			if err != nil {
				return err
			}

			logger := logging.NewLogger(appCfg.Logging.Level, os.Stderr)
			audit := logging.NewAuditLogger(config.Dir(), appCfg.Logging.Level)

			server, err := mcp.NewServer(&mcp.Config{
				Name:    "dimsim",
				Version: version,
				Logger:  logger,
				Audit:   audit,
			})
			if err != nil {
				return err
			}
			defer server.Close()

			logger.Info("starting MCP server", "version", version)
			return server.Run(cmd.Context())
		},
	}
}
