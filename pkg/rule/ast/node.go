package ast

import (
	"fmt"
	"strings"
)

// Kind discriminates the two node variants in a parsed rule tree.
type Kind string

const (
	KindCondition Kind = "condition" // leaf: attribute comparator value
	KindOperator  Kind = "operator"  // internal: AND/OR over two subtrees
)

// Comparator is the comparison operator of a leaf condition.
type Comparator string

const (
	ComparatorEq Comparator = "="
	ComparatorGt Comparator = ">"
	ComparatorLt Comparator = "<"
)

// BoolOp is the logical connective of an operator node.
type BoolOp string

const (
	OpAnd BoolOp = "AND"
	OpOr  BoolOp = "OR"
)

// Node is a single node in a parsed rule tree.
//
// A tree is built bottom-up during one parse call and never mutated
// afterward. Operator nodes own exactly two non-nil children; condition
// nodes own none. Because nodes are immutable post-construction, the same
// tree may be evaluated concurrently from multiple goroutines without
// synchronization.
type Node struct {
	Kind Kind

	// Condition fields (KindCondition only).
	Attribute  string
	Comparator Comparator
	Value      string // raw token; string literals keep their quotes

	// Operator fields (KindOperator only).
	Op    BoolOp
	Left  *Node
	Right *Node
}

// NewCondition builds a leaf condition node.
func NewCondition(attribute string, cmp Comparator, value string) *Node {
	return &Node{
		Kind:       KindCondition,
		Attribute:  attribute,
		Comparator: cmp,
		Value:      value,
	}
}

// NewOperator builds an internal AND/OR node over two subtrees.
func NewOperator(op BoolOp, left, right *Node) *Node {
	return &Node{
		Kind:  KindOperator,
		Op:    op,
		Left:  left,
		Right: right,
	}
}

// IsCondition returns true for leaf condition nodes.
func (n *Node) IsCondition() bool {
	return n.Kind == KindCondition
}

// IsOperator returns true for internal AND/OR nodes.
func (n *Node) IsOperator() bool {
	return n.Kind == KindOperator
}

// String renders the node back to rule-expression text. Operator nodes are
// parenthesized so the rendering round-trips through the parser with the
// same shape.
func (n *Node) String() string {
	if n == nil {
		return ""
	}

	var sb strings.Builder
	n.render(&sb)
	return sb.String()
}

func (n *Node) render(sb *strings.Builder) {
	switch n.Kind {
	case KindCondition:
		fmt.Fprintf(sb, "%s %s %s", n.Attribute, n.Comparator, n.Value)
	case KindOperator:
		sb.WriteString("(")
		n.Left.render(sb)
		fmt.Fprintf(sb, " %s ", n.Op)
		n.Right.render(sb)
		sb.WriteString(")")
	}
}

// Walk visits every node in the tree in depth-first, left-to-right order.
// It stops early if fn returns false.
func Walk(n *Node, fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	if n.Kind == KindOperator {
		if !Walk(n.Left, fn) {
			return false
		}
		if !Walk(n.Right, fn) {
			return false
		}
	}
	return true
}
