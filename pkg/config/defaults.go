package config

import "time"

// Default values applied to unset fields.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = 1 << 20 // 1MB

	DefaultStorageBackend = "sqlite"
	DefaultStoragePath    = "ruleforge.db"
	DefaultBusyTimeout    = 5 * time.Second

	DefaultRulesOwner    = "default"
	DefaultDebounceDelay = 500 * time.Millisecond

	DefaultAuditPath       = "ruleforge-audit.db"
	DefaultAuditRetention  = 30 * 24 * time.Hour
	DefaultCleanupSchedule = "0 3 * * *"

	DefaultRequestsPerSecond = 10
	DefaultBurst             = 20

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills unset fields with their default values.
// It is called by LoadConfig before validation; NewDefaultConfig exposes
// the same defaults for callers that start from an empty Config.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Storage.BusyTimeout == 0 {
		cfg.Storage.BusyTimeout = DefaultBusyTimeout
	}

	if cfg.Rules.Owner == "" {
		cfg.Rules.Owner = DefaultRulesOwner
	}
	if cfg.Rules.DebounceDelay == 0 {
		cfg.Rules.DebounceDelay = DefaultDebounceDelay
	}

	if cfg.Audit.Path == "" {
		cfg.Audit.Path = DefaultAuditPath
	}
	if cfg.Audit.Retention == 0 {
		cfg.Audit.Retention = DefaultAuditRetention
	}
	if cfg.Audit.CleanupSchedule == "" {
		cfg.Audit.CleanupSchedule = DefaultCleanupSchedule
	}

	if cfg.Limits.RequestsPerSecond == 0 {
		cfg.Limits.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Limits.Burst == 0 {
		cfg.Limits.Burst = DefaultBurst
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
}

// NewDefaultConfig returns a Config with every field set to its default.
// Rate limiting and metrics are enabled by default; auth and audit are
// opt-in.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Limits.Enabled = true
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}
