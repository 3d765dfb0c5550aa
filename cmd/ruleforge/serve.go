package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ruleforge/ruleforge/pkg/audit"
	"github.com/ruleforge/ruleforge/pkg/config"
	"github.com/ruleforge/ruleforge/pkg/rules"
	"github.com/ruleforge/ruleforge/pkg/server"
	"github.com/ruleforge/ruleforge/pkg/store"
	"github.com/ruleforge/ruleforge/pkg/telemetry/logging"
	"github.com/ruleforge/ruleforge/pkg/telemetry/metrics"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Ruleforge API server",
	Long: `Start the Ruleforge API server with the specified configuration.

The server stores rules per owner and evaluates records against them.
When a rules file is configured it is preloaded at startup and, with
watching enabled, reloaded on change.

Examples:
  # Start with default config
  ruleforge serve

  # Start with custom config
  ruleforge serve --config /etc/ruleforge/config.yaml

  # Override listen address
  ruleforge serve --listen 0.0.0.0:8080

  # Validate config without starting the server
  ruleforge serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	})
	if err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	slog.SetDefault(logger)

	if serveFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	backend, err := newBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	collector := metrics.NewCollector(nil)
	if n, err := backend.Count(ctx); err == nil {
		collector.SetStoredRules(n)
	}

	var recorder *audit.Recorder
	if cfg.Audit.Enabled {
		auditStore, err := audit.NewSQLiteStore(cfg.Audit.Path)
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		defer auditStore.Close()
		recorder = audit.NewRecorder(auditStore, logger)

		scheduler := audit.NewScheduler(auditStore, cfg.Audit.Retention, cfg.Audit.CleanupSchedule, logger)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start audit retention: %w", err)
		}
		defer scheduler.Stop()

		logger.Info("audit trail enabled",
			"path", cfg.Audit.Path,
			"retention", cfg.Audit.Retention.String(),
		)
	}

	if cfg.Rules.File != "" {
		loader := rules.NewLoader(backend, cfg.Rules.Owner, cfg.Rules.File, logger)
		if err := loader.Sync(ctx); err != nil {
			return fmt.Errorf("failed to preload rules file: %w", err)
		}
		if n, err := backend.Count(ctx); err == nil {
			collector.SetStoredRules(n)
		}

		if cfg.Rules.Watch {
			watcher, err := rules.NewWatcher(cfg.Rules.File, cfg.Rules.DebounceDelay, logger)
			if err != nil {
				return fmt.Errorf("failed to create rules watcher: %w", err)
			}
			go func() {
				_ = watcher.Watch(ctx, func(ctx context.Context) error {
					if err := loader.Sync(ctx); err != nil {
						return err
					}
					if n, err := backend.Count(ctx); err == nil {
						collector.SetStoredRules(n)
					}
					return nil
				})
			}()
			defer watcher.Stop()
		}
	}

	srv := server.New(cfg, backend, server.Options{
		Recorder:  recorder,
		Collector: collector,
		Logger:    logger,
	})

	return srv.Start(ctx)
}

// newBackend creates the configured storage backend.
func newBackend(cfg *config.Config) (store.Backend, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return store.NewMemoryBackend(), nil
	case "sqlite":
		backend, err := store.NewSQLiteBackendWithConfig(store.SQLiteBackendConfig{
			Path:        cfg.Storage.Path,
			BusyTimeout: cfg.Storage.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open rule store: %w", err)
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}
