package parser

import "strings"

// Tokenize splits a rule string into its lexical tokens.
//
// Parentheses always become standalone tokens, even when glued to other
// text. Single-quoted literals are kept as one token with both quote
// characters included; whitespace inside a literal is retained verbatim.
// Outside a literal, runs of whitespace separate tokens.
//
// Tokenize accepts any input and never fails. An unterminated quote simply
// accumulates the rest of the input into one token; the parser rejects the
// malformed condition later.
func Tokenize(input string) []string {
	// Pad parens so they tokenize on their own.
	input = strings.ReplaceAll(input, "(", " ( ")
	input = strings.ReplaceAll(input, ")", " ) ")

	var (
		tokens   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, r := range input {
		switch {
		case r == '\'' && !inQuotes:
			inQuotes = true
			current.WriteRune(r)

		case r == '\'' && inQuotes:
			// Closing quote ends the token immediately.
			inQuotes = false
			current.WriteRune(r)
			tokens = append(tokens, current.String())
			current.Reset()

		case isSpace(r) && !inQuotes:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
