// Package telemetry provides observability for Ruleforge.
//
// # Components
//
//   - logging: structured logging on log/slog with JSON and text handlers
//   - metrics: Prometheus metrics for parsing, evaluation and HTTP traffic
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	collector := metrics.NewCollector(nil)
//	collector.RecordEvaluation(true)
package telemetry
