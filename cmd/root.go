package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/schemasmith/schemasmith/internal/config"
	"github.com/schemasmith/schemasmith/internal/engine"
	"github.com/schemasmith/schemasmith/internal/logging"
	"github.com/schemasmith/schemasmith/internal/snapshot"
)

var (
	cfgFile  string
	logLevel string
	version  = "dev"
	commit   = "none"
	date     = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "schemasmith",
	Short: "Schemasmith: schema-driven Laravel artifact generator",
	Long: `Schemasmith reflects a MySQL or PostgreSQL catalog and keeps the Laravel
artifacts of a project in step with it: models, factories, form requests,
API resources, validation language files and an API collection.

Existing artifacts are patched in place. Hand edits outside the generated
regions, and hand-edited values of unchanged columns, are preserved.`,
	SilenceUsage: true,
}

func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.schemasmith/schemasmith.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides logging.level")
}

// configPath returns the config file in use.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.ExpandHome(config.DefaultPath)
}

// loadRuntime loads the config and sets up logging.
func loadRuntime() (*config.Config, *slog.Logger, error) {
	return loadRuntimeTo(os.Stdout)
}

// loadRuntimeTo is loadRuntime with console logs sent to w.
func loadRuntimeTo(w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.SetupTo(w, level, cfg.Logging.Directory)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up logging: %w", err)
	}
	return cfg, logger, nil
}

// newEngine opens the snapshot store and builds the engine. The returned func
// closes the store.
func newEngine(ctx context.Context) (*engine.Engine, func(), error) {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return nil, nil, err
	}
	store, err := snapshot.Open(ctx, cfg.Snapshots)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warn("closing snapshot store", "error", err)
		}
	}
	return engine.New(cfg, logger, store), closeStore, nil
}
