package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/viewdeck/viewdeck/internal/config"
	"github.com/viewdeck/viewdeck/pkg/httpserver"
	"github.com/viewdeck/viewdeck/pkg/metrics"
	"github.com/viewdeck/viewdeck/pkg/push"
	"github.com/viewdeck/viewdeck/pkg/registry"
	"github.com/viewdeck/viewdeck/pkg/store"
	"github.com/viewdeck/viewdeck/pkg/view"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Serve views over HTTP: websocket and SSE update streams, a JSON
read surface, and the operational endpoints. Configuration comes from
VIEWDECK_* environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
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

	server := httpserver.New(&httpserver.Config{
		Addr:           settings.Addr,
		MetricsEnabled: settings.MetricsEnabled,
	}, manager, logger)
	return server.ListenAndServe(ctx)
}

func newLogger(settings *config.Settings) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: settings.SlogLevel(),
	}))
}

// buildManager wires the store, channel and registry per the settings
// and seeds the configured view definitions.
func buildManager(ctx context.Context, settings *config.Settings, logger *slog.Logger) (*view.Manager, error) {
	var viewStore store.ViewStore
	switch settings.StorageBackend {
	case config.StorageS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		viewStore = store.NewS3Store(s3.NewFromConfig(awsCfg), settings.S3Bucket, settings.S3Prefix, settings.MaxViews)
	default:
		viewStore = store.NewMemoryStore(settings.MaxViews)
	}

	var channel *push.Channel
	if settings.PushEnabled {
		channel = push.NewChannel(settings.PushConfig(), logger)
	}
	manager := view.New(settings.ManagerConfig(), viewStore, channel, registry.New(), logger)

	if settings.ViewsDir != "" {
		defs, err := config.LoadViewDefinitions(settings.ViewsDir)
		if err != nil {
			return nil, err
		}
		// Seeding is authoring; open the gate for it even when runtime
		// authoring is disabled.
		seeder := manager
		if !settings.AuthoringEnabled {
			seedConfig := settings.ManagerConfig()
			seedConfig.AuthoringEnabled = true
			seeder = view.New(seedConfig, viewStore, channel, manager.Registry(), logger)
		}
		if err := config.Seed(ctx, seeder, defs); err != nil {
			return nil, err
		}
		logger.Info("seeded view definitions", "count", len(defs), "dir", settings.ViewsDir)
	}
	return manager, nil
}
