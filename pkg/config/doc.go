// Package config loads, defaults and validates Ruleforge configuration.
//
// Configuration is read from a YAML file and can be overridden with
// RULEFORGE_* environment variables. All fields have sensible defaults;
// an empty file yields a working local setup with SQLite storage, rate
// limiting and metrics enabled, and auth and audit disabled.
package config
