// Package rule is the front door to the rule-expression engine.
//
// A rule is a boolean expression over named attributes:
//
//	(age > 30 AND department = 'Sales') OR (salary < 50000)
//
// The package is organized into subpackages:
//
//   - ast: syntax tree definitions (conditions and AND/OR operators)
//   - parser: tokenizer and recursive-descent parser
//   - eval: short-circuit evaluator over records
//   - errors: typed syntax errors
//
// # Basic Usage
//
//	node, err := rule.Create("age > 30 AND department = 'Sales'")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ok := rule.Evaluate(node, eval.Record{"age": 35, "department": "Sales"})
//
// # Precedence
//
// AND and OR share a single precedence level and fold strictly left to
// right. "a = '1' OR b = '2' AND c = '3'" parses as
// "((a = '1' OR b = '2') AND c = '3')". This matches the language's
// documented contract; it deliberately differs from conventional boolean
// precedence.
//
// # Concurrency
//
// Parsed trees are immutable; one tree may be evaluated concurrently from
// any number of goroutines. Each Parse call owns its own cursor state, so
// parsing is reentrant as well.
package rule
