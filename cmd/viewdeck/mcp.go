package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/viewdeck/viewdeck/internal/config"
	"github.com/viewdeck/viewdeck/internal/mcptools"
	"github.com/viewdeck/viewdeck/pkg/metrics"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server over stdio",
		Long: `Expose the view engine as MCP tools on stdin/stdout so agents can
inspect and author views. Configuration comes from VIEWDECK_*
environment variables; authoring tools fail unless
VIEWDECK_AUTHORING_ENABLED=true.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd.Context())
		},
	}
}

func runMCP(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(settings)

	if settings.MetricsEnabled {
		metrics.Register()
	}

	manager, err := buildManager(ctx, settings, logger)
	if err != nil {
		return err
	}
	return mcptools.NewServer(manager, version, logger).ServeStdio(ctx)
}
