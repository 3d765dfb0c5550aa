package errors

import (
	"fmt"
	"strings"
)

// ErrorKind categorizes a rule syntax error.
type ErrorKind string

const (
	// ErrEmptyExpression means the input ran out where a condition was expected.
	ErrEmptyExpression ErrorKind = "empty_expression"
	// ErrIncompleteCondition means fewer than three tokens remained for an
	// attribute/comparator/value triple.
	ErrIncompleteCondition ErrorKind = "incomplete_condition"
	// ErrInvalidComparator means the middle token of a condition was not
	// one of '=', '>' or '<'.
	ErrInvalidComparator ErrorKind = "invalid_comparator"
	// ErrUnmatchedParenthesis means an opening '(' had no matching ')'.
	ErrUnmatchedParenthesis ErrorKind = "unmatched_parenthesis"
	// ErrTrailingTokens means tokens remained after a complete expression.
	ErrTrailingTokens ErrorKind = "trailing_tokens"
)

// SyntaxError is a fatal parse error for one rule string.
//
// It carries the offending token span so callers can build user-facing
// messages. Parsing aborts on the first error; there is no recovery
// mid-parse.
type SyntaxError struct {
	Kind       ErrorKind // category of failure
	Message    string    // human-readable description
	Tokens     []string  // offending or remaining tokens, if any
	Suggestion string    // suggested fix (optional)
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%s] %s", e.Kind, e.Message)

	if len(e.Tokens) > 0 {
		fmt.Fprintf(&sb, ": %q", strings.Join(e.Tokens, " "))
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&sb, " (suggestion: %s)", e.Suggestion)
	}

	return sb.String()
}

// New creates a syntax error with the given kind, message and token span.
func New(kind ErrorKind, message string, tokens []string) *SyntaxError {
	return &SyntaxError{
		Kind:    kind,
		Message: message,
		Tokens:  tokens,
	}
}

// WithSuggestion attaches a suggested fix and returns the error.
func (e *SyntaxError) WithSuggestion(s string) *SyntaxError {
	e.Suggestion = s
	return e
}
