// Package server provides the HTTP API for managing and evaluating
// rules: CRUD under /api/rules, evaluation at /api/evaluate, liveness
// and readiness probes, and the Prometheus metrics endpoint.
package server
