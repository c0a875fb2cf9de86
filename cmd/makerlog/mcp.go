package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/rpggio/makerlog/internal/config"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve MCP tools over stdio",
	Long: `Serve the makerlog MCP tools on stdin/stdout for a local agent.

Logs go to stderr (or the configured log file) so stdout stays clean for
JSON-RPC. Auth is disabled in this mode.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Transport.Mode = "stdio"
		return runStdio(cmd.Context(), cfg)
	},
}

func runStdio(ctx context.Context, cfg config.Config) error {
	logger, closeLog := newLogger(cfg, os.Stderr)
	defer closeLog()

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting stdio transport", "auth", "disabled")
	if err := a.mcpServer(cfg).Run(ctx, &sdkmcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("stdio server error", "error", err)
		return err
	}
	logger.Info("shutting down")
	return nil
}
