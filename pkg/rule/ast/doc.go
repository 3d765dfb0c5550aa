// Package ast defines the abstract syntax tree for rule expressions.
//
// A rule expression is a boolean combination of attribute comparisons:
//
//	(age > 30 AND department = 'Sales') OR (salary < 50000)
//
// The tree has two node variants: conditions (leaves comparing one named
// attribute against a literal) and operators (internal AND/OR nodes with
// exactly two children). Trees are immutable once built.
package ast
