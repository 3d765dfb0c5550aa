// Package logging builds the structured slog logger used across Ruleforge
// and provides context helpers for propagating request-scoped log fields.
package logging
