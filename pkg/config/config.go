package config

import "time"

// Config is the root configuration structure for Ruleforge.
// It contains all configuration sections for the API server, rule storage,
// the optional rules file, the evaluation audit trail, rate limiting,
// telemetry and security settings.
type Config struct {
	// Server contains HTTP API server configuration including listen
	// address, timeouts and CORS.
	Server ServerConfig `yaml:"server"`

	// Storage contains configuration for rule persistence.
	Storage StorageConfig `yaml:"storage"`

	// Rules contains configuration for the optional rules file that is
	// preloaded at startup and reloaded on change.
	Rules RulesConfig `yaml:"rules"`

	// Audit contains configuration for the evaluation audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Limits contains configuration for per-key rate limiting.
	Limits LimitsConfig `yaml:"limits"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Security contains authentication configuration.
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port". Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes. Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request on a
	// kept-alive connection. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are abandoned. Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits the size of request bodies. Default: 1MB
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// StorageConfig contains configuration for rule persistence.
type StorageConfig struct {
	// Backend selects the storage backend: "memory" or "sqlite".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file for the sqlite backend.
	// Default: "ruleforge.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long SQLite waits for locks before failing.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RulesConfig contains configuration for the optional rules file.
type RulesConfig struct {
	// File is a YAML file holding a list of rule strings to preload.
	// Empty disables preloading.
	File string `yaml:"file"`

	// Owner is the owner the preloaded rules are stored under.
	// Default: "default"
	Owner string `yaml:"owner"`

	// Watch reloads the rules file when it changes on disk.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceDelay coalesces rapid file events into one reload.
	// Default: 500ms
	DebounceDelay time.Duration `yaml:"debounce_delay"`
}

// AuditConfig contains configuration for the evaluation audit trail.
type AuditConfig struct {
	// Enabled turns audit recording on. Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file for audit events.
	// Default: "ruleforge-audit.db"
	Path string `yaml:"path"`

	// Retention is how long audit events are kept. Default: 720h (30 days)
	Retention time.Duration `yaml:"retention"`

	// CleanupSchedule is the cron expression for the retention job.
	// Default: "0 3 * * *" (daily at 03:00)
	CleanupSchedule string `yaml:"cleanup_schedule"`
}

// LimitsConfig contains configuration for per-key rate limiting.
type LimitsConfig struct {
	// Enabled turns rate limiting on. Default: true
	Enabled bool `yaml:"enabled"`

	// RequestsPerSecond is the sustained per-key request rate.
	// Default: 10
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the per-key burst capacity. Default: 20
	Burst int64 `yaml:"burst"`
}

// TelemetryConfig contains configuration for logging and metrics.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: json or text. Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records. Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled exposes /metrics. Default: true
	Enabled bool `yaml:"enabled"`
}

// SecurityConfig contains authentication configuration.
type SecurityConfig struct {
	// Auth contains API key authentication settings.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig contains API key authentication settings.
type AuthConfig struct {
	// Enabled turns API key authentication on. When disabled, all
	// requests act on behalf of the "default" owner. Default: false
	Enabled bool `yaml:"enabled"`

	// Keys is the set of accepted API keys.
	Keys []APIKey `yaml:"keys"`
}

// APIKey maps one API key to the owner whose rules it operates on.
type APIKey struct {
	// Key is the secret presented by the client.
	Key string `yaml:"key"`

	// Owner is the rule namespace this key operates on.
	Owner string `yaml:"owner"`

	// Disabled rejects the key without removing it from config.
	Disabled bool `yaml:"disabled"`
}
