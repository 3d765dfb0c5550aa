package rule

import (
	"github.com/ruleforge/ruleforge/pkg/rule/ast"
	"github.com/ruleforge/ruleforge/pkg/rule/eval"
	"github.com/ruleforge/ruleforge/pkg/rule/parser"
)

// Create parses a rule string into its syntax tree. Malformed input
// returns a *errors.SyntaxError.
func Create(text string) (*ast.Node, error) {
	return parser.Parse(text)
}

// Evaluate walks a parsed tree against a record using a default evaluator.
// It is total: missing attributes and non-numeric operands resolve to
// false rather than failing. Callers that want diagnostics should build
// their own eval.Evaluator with a reporter.
func Evaluate(node *ast.Node, record eval.Record) bool {
	return eval.New().Evaluate(node, record)
}

// Combine folds several rule strings into one tree joined by OR.
//
// Zero rules yield a nil tree; interpreting "no rules" (commonly as
// vacuous truth) is the caller's policy, not the combinator's. A single
// rule yields its own tree unchanged. Multiple rules yield a right-leaning
// OR chain whose shape is determined by rule order:
//
//	rules[0] OR (rules[1] OR (rules[2] OR ...))
//
// The fold is built iteratively from the last rule outward so stack depth
// stays constant regardless of rule count. The first syntax error among
// the inputs aborts the whole combination.
func Combine(texts []string) (*ast.Node, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	parsed := make([]*ast.Node, len(texts))
	for i, text := range texts {
		node, err := parser.Parse(text)
		if err != nil {
			return nil, err
		}
		parsed[i] = node
	}

	// Right fold: start from the last tree and wrap leftward.
	combined := parsed[len(parsed)-1]
	for i := len(parsed) - 2; i >= 0; i-- {
		combined = ast.NewOperator(ast.OpOr, parsed[i], combined)
	}

	return combined, nil
}
