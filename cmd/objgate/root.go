package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"objgate/internal/config"
	"objgate/internal/logger"
	"objgate/internal/storage"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "objgate",
	Short: "S3-compatible object storage gateway",
	Long: `objgate exposes an S3-compatible bucket over HTTP: direct and batch
uploads, presigned view and upload URLs, listing, download and delete.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		l, logErr := logger.New(config.LogConfig{Level: "debug", Format: "console"})
		if logErr != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
		os.Exit(1)
	}
}

// env bundles what every subcommand needs.
type env struct {
	cfg   *config.AppConfig
	log   *zap.Logger
	store storage.Store
}

// bootstrap loads config, builds the logger and opens the store.
func bootstrap(ctx context.Context) (*env, error) {
	cfg := config.Load()

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := storage.Open(ctx, cfg.Driver, cfg.Storage, cfg.EnsureBucket, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &env{cfg: cfg, log: log, store: store}, nil
}
