// Package errors defines the typed syntax errors produced while parsing
// rule expressions. Every parse failure surfaces as a single *SyntaxError
// carrying the offending token span; evaluation never produces errors.
package errors
