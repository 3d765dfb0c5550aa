package ast

import (
	"testing"
)

func TestNode_String(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{
			name: "condition",
			node: NewCondition("age", ComparatorGt, "30"),
			want: "age > 30",
		},
		{
			name: "quoted value kept verbatim",
			node: NewCondition("department", ComparatorEq, "'Sales'"),
			want: "department = 'Sales'",
		},
		{
			name: "operator parenthesized",
			node: NewOperator(OpAnd,
				NewCondition("age", ComparatorGt, "30"),
				NewCondition("department", ComparatorEq, "'Sales'"),
			),
			want: "(age > 30 AND department = 'Sales')",
		},
		{
			name: "nested operators",
			node: NewOperator(OpOr,
				NewOperator(OpAnd,
					NewCondition("age", ComparatorGt, "30"),
					NewCondition("department", ComparatorEq, "'Sales'"),
				),
				NewCondition("salary", ComparatorLt, "50000"),
			),
			want: "((age > 30 AND department = 'Sales') OR salary < 50000)",
		},
		{
			name: "nil node",
			node: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWalk(t *testing.T) {
	tree := NewOperator(OpOr,
		NewCondition("a", ComparatorEq, "'1'"),
		NewOperator(OpAnd,
			NewCondition("b", ComparatorEq, "'2'"),
			NewCondition("c", ComparatorEq, "'3'"),
		),
	)

	var attrs []string
	Walk(tree, func(n *Node) bool {
		if n.IsCondition() {
			attrs = append(attrs, n.Attribute)
		}
		return true
	})

	want := []string{"a", "b", "c"}
	if len(attrs) != len(want) {
		t.Fatalf("visited %v, want %v", attrs, want)
	}
	for i := range want {
		if attrs[i] != want[i] {
			t.Fatalf("visited %v, want %v", attrs, want)
		}
	}

	// Early stop.
	var count int
	Walk(tree, func(n *Node) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("early-stop visit count = %d, want 2", count)
	}
}
