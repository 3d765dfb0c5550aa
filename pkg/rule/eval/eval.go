package eval

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ruleforge/ruleforge/pkg/rule/ast"
)

// Record is the input a rule is evaluated against: attribute names mapped
// to their values. Values are typically strings and numbers decoded from
// JSON.
type Record map[string]any

// DiagnosticReason classifies a non-fatal evaluation problem.
type DiagnosticReason string

const (
	// ReasonMissingAttribute means the record had no value for the
	// condition's attribute.
	ReasonMissingAttribute DiagnosticReason = "missing_attribute"
	// ReasonNonNumeric means a '>' or '<' operand could not be parsed as a
	// number.
	ReasonNonNumeric DiagnosticReason = "non_numeric_operand"
)

// Diagnostic describes a condition that degraded to false during
// evaluation. Diagnostics never affect control flow; they exist purely for
// observability.
type Diagnostic struct {
	Reason    DiagnosticReason
	Attribute string
	Detail    string
}

// Evaluator walks rule trees against records.
//
// Evaluation is total: it always produces a boolean and never an error.
// Missing attributes and non-numeric comparison operands resolve the
// affected condition to false and are surfaced only through the logger and
// the optional Report callback. Sparse records are legitimate input, not a
// failure mode.
//
// An Evaluator is stateless apart from its sinks and is safe for
// concurrent use; it never mutates the trees it walks.
type Evaluator struct {
	logger *slog.Logger

	// Report, if set, receives one Diagnostic per degraded condition.
	report func(Diagnostic)
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for evaluation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// WithReporter sets a callback invoked for every evaluation diagnostic.
// The choice of sink stays with the caller.
func WithReporter(report func(Diagnostic)) Option {
	return func(e *Evaluator) { e.report = report }
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate walks the tree against the record and returns the boolean
// outcome. A nil tree means "no condition" and evaluates to true.
func (e *Evaluator) Evaluate(node *ast.Node, record Record) bool {
	if node == nil {
		return true
	}

	switch node.Kind {
	case ast.KindCondition:
		return e.evaluateCondition(node, record)
	case ast.KindOperator:
		return e.evaluateOperator(node, record)
	default:
		// Unreachable for parser-built trees.
		e.logger.Error("unknown node kind", "kind", node.Kind)
		return false
	}
}

// evaluateCondition resolves one attribute comparison.
func (e *Evaluator) evaluateCondition(node *ast.Node, record Record) bool {
	value, ok := record[node.Attribute]
	if !ok {
		e.diagnose(Diagnostic{
			Reason:    ReasonMissingAttribute,
			Attribute: node.Attribute,
			Detail:    fmt.Sprintf("attribute %q not present in record", node.Attribute),
		})
		return false
	}

	switch node.Comparator {
	case ast.ComparatorEq:
		// String comparison against the literal with its quotes stripped.
		return fmt.Sprint(value) == strings.Trim(node.Value, "'")

	case ast.ComparatorGt, ast.ComparatorLt:
		actual, err := toFloat64(value)
		if err != nil {
			e.diagnose(Diagnostic{
				Reason:    ReasonNonNumeric,
				Attribute: node.Attribute,
				Detail:    fmt.Sprintf("record value %v is not numeric: %v", value, err),
			})
			return false
		}

		expected, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			e.diagnose(Diagnostic{
				Reason:    ReasonNonNumeric,
				Attribute: node.Attribute,
				Detail:    fmt.Sprintf("rule value %q is not numeric", node.Value),
			})
			return false
		}

		if node.Comparator == ast.ComparatorGt {
			return actual > expected
		}
		return actual < expected

	default:
		e.logger.Error("unknown comparator", "comparator", node.Comparator)
		return false
	}
}

// evaluateOperator resolves an AND/OR node with short-circuiting: the right
// subtree is not visited when the left already determines the result.
func (e *Evaluator) evaluateOperator(node *ast.Node, record Record) bool {
	left := e.Evaluate(node.Left, record)

	switch node.Op {
	case ast.OpAnd:
		if !left {
			return false
		}
		return e.Evaluate(node.Right, record)

	case ast.OpOr:
		if left {
			return true
		}
		return e.Evaluate(node.Right, record)

	default:
		e.logger.Error("unknown boolean operator", "op", node.Op)
		return false
	}
}

func (e *Evaluator) diagnose(d Diagnostic) {
	e.logger.Debug("condition degraded to false",
		"reason", d.Reason,
		"attribute", d.Attribute,
		"detail", d.Detail,
	)
	if e.report != nil {
		e.report(d)
	}
}

// toFloat64 coerces a record value to float64 for numeric comparison.
func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return strconv.ParseFloat(fmt.Sprint(v), 64)
	}
}
