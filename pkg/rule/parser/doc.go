// Package parser tokenizes and parses rule expressions.
//
// Tokenize turns a rule string into an ordered token sequence and never
// fails. Parse consumes that sequence with a recursive-descent parser and
// builds an immutable ast.Node tree, returning a typed syntax error on the
// first malformed construct.
package parser
