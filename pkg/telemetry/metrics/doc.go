// Package metrics defines the Prometheus metrics recorded by Ruleforge:
// rule parse outcomes, evaluation results and diagnostics, stored rule
// counts, and HTTP request counts and latencies.
package metrics
