package config

import (
	"fmt"
	"net"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns the first problem found.
func Validate(cfg *Config) error {
	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
		return fmt.Errorf("server.listen_address %q is not a valid host:port: %w",
			cfg.Server.ListenAddress, err)
	}
	if cfg.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must not be negative, got %d",
			cfg.Server.MaxBodyBytes)
	}

	switch cfg.Storage.Backend {
	case "memory":
	case "sqlite":
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("storage.backend must be \"memory\" or \"sqlite\", got %q",
			cfg.Storage.Backend)
	}

	if cfg.Rules.Owner == "" {
		return fmt.Errorf("rules.owner must not be empty")
	}
	if cfg.Rules.Watch && cfg.Rules.File == "" {
		return fmt.Errorf("rules.watch requires rules.file to be set")
	}

	if cfg.Audit.Enabled {
		if cfg.Audit.Path == "" {
			return fmt.Errorf("audit.path is required when audit is enabled")
		}
		if cfg.Audit.Retention <= 0 {
			return fmt.Errorf("audit.retention must be positive, got %s", cfg.Audit.Retention)
		}
		if _, err := cron.ParseStandard(cfg.Audit.CleanupSchedule); err != nil {
			return fmt.Errorf("audit.cleanup_schedule %q is not a valid cron expression: %w",
				cfg.Audit.CleanupSchedule, err)
		}
	}

	if cfg.Limits.Enabled {
		if cfg.Limits.RequestsPerSecond <= 0 {
			return fmt.Errorf("limits.requests_per_second must be positive, got %g",
				cfg.Limits.RequestsPerSecond)
		}
		if cfg.Limits.Burst <= 0 {
			return fmt.Errorf("limits.burst must be positive, got %d", cfg.Limits.Burst)
		}
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level must be one of debug, info, warn, error; got %q",
			cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format must be json or text, got %q",
			cfg.Telemetry.Logging.Format)
	}

	if cfg.Security.Auth.Enabled {
		if len(cfg.Security.Auth.Keys) == 0 {
			return fmt.Errorf("security.auth.enabled requires at least one key")
		}
		seen := make(map[string]struct{}, len(cfg.Security.Auth.Keys))
		for i, key := range cfg.Security.Auth.Keys {
			if key.Key == "" {
				return fmt.Errorf("security.auth.keys[%d].key must not be empty", i)
			}
			if key.Owner == "" {
				return fmt.Errorf("security.auth.keys[%d].owner must not be empty", i)
			}
			if _, dup := seen[key.Key]; dup {
				return fmt.Errorf("security.auth.keys[%d] duplicates an earlier key", i)
			}
			seen[key.Key] = struct{}{}
		}
	}

	return nil
}
