package parser

import (
	"fmt"
	"strings"

	"github.com/ruleforge/ruleforge/pkg/rule/ast"
	ruleErrors "github.com/ruleforge/ruleforge/pkg/rule/errors"
)

// Parse parses a rule expression into its syntax tree.
//
// The grammar is left-associative with a single precedence level for both
// connectives:
//
//	expression := condition ( ('AND' | 'OR') condition )*
//	condition  := '(' expression ')' | attribute comparator value
//	comparator := '=' | '>' | '<'
//
// AND does not bind tighter than OR: "a = '1' OR b = '2' AND c = '3'" folds
// as "((a = '1' OR b = '2') AND c = '3')". This is a documented contract of
// the language, not an oversight.
//
// On malformed input Parse returns a *errors.SyntaxError describing the
// first failure; it never returns a partial tree.
func Parse(input string) (*ast.Node, error) {
	p := &parser{tokens: Tokenize(input)}

	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if !p.exhausted() {
		remaining := p.remaining()
		return nil, ruleErrors.New(
			ruleErrors.ErrTrailingTokens,
			fmt.Sprintf("unexpected tokens after end of expression: %q", strings.Join(remaining, " ")),
			remaining,
		)
	}

	return node, nil
}

// parser holds the per-call token cursor. Each Parse invocation owns its
// own parser value, so concurrent parses never share state.
type parser struct {
	tokens []string
	pos    int
}

func (p *parser) exhausted() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) peek() string {
	return p.tokens[p.pos]
}

func (p *parser) next() string {
	tok := p.tokens[p.pos]
	p.pos++
	return tok
}

func (p *parser) remaining() []string {
	return p.tokens[p.pos:]
}

// parseExpression parses one or more conditions joined by AND/OR, folding
// strictly left-to-right.
func (p *parser) parseExpression() (*ast.Node, error) {
	if p.exhausted() {
		return nil, ruleErrors.New(
			ruleErrors.ErrEmptyExpression,
			"unexpected end of expression",
			nil,
		)
	}

	node, err := p.parseCondition()
	if err != nil {
		return nil, err
	}

	for !p.exhausted() && (p.peek() == string(ast.OpAnd) || p.peek() == string(ast.OpOr)) {
		op := ast.BoolOp(p.next())

		right, err := p.parseCondition()
		if err != nil {
			return nil, err
		}

		node = ast.NewOperator(op, node, right)
	}

	return node, nil
}

// parseCondition parses a parenthesized sub-expression or a single
// attribute/comparator/value leaf.
func (p *parser) parseCondition() (*ast.Node, error) {
	if p.exhausted() {
		return nil, ruleErrors.New(
			ruleErrors.ErrEmptyExpression,
			"unexpected end of condition",
			nil,
		)
	}

	if p.peek() == "(" {
		p.next()

		node, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		if p.exhausted() || p.peek() != ")" {
			return nil, ruleErrors.New(
				ruleErrors.ErrUnmatchedParenthesis,
				"missing closing parenthesis",
				p.remaining(),
			).WithSuggestion("add ')' to close the group")
		}
		p.next()

		return node, nil
	}

	if len(p.remaining()) < 3 {
		remaining := p.remaining()
		return nil, ruleErrors.New(
			ruleErrors.ErrIncompleteCondition,
			fmt.Sprintf("incomplete condition: %q", strings.Join(remaining, " ")),
			remaining,
		).WithSuggestion("conditions have the form: attribute comparator value")
	}

	attribute := p.next()
	cmp := p.next()
	value := p.next()

	switch ast.Comparator(cmp) {
	case ast.ComparatorEq, ast.ComparatorGt, ast.ComparatorLt:
	default:
		return nil, ruleErrors.New(
			ruleErrors.ErrInvalidComparator,
			fmt.Sprintf("invalid comparison operator %q", cmp),
			[]string{cmp},
		).WithSuggestion("use '=', '>' or '<'")
	}

	return ast.NewCondition(attribute, ast.Comparator(cmp), value), nil
}
