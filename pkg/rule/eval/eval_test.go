package eval

import (
	"testing"

	"github.com/ruleforge/ruleforge/pkg/rule/ast"
	"github.com/ruleforge/ruleforge/pkg/rule/parser"
)

func mustParse(t *testing.T, text string) *ast.Node {
	t.Helper()
	node, err := parser.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", text, err)
	}
	return node
}

func TestEvaluate_Conditions(t *testing.T) {
	tests := []struct {
		name   string
		rule   string
		record Record
		want   bool
	}{
		{
			name:   "numeric greater than",
			rule:   "age > 30",
			record: Record{"age": 35},
			want:   true,
		},
		{
			name:   "numeric greater than false",
			rule:   "age > 30",
			record: Record{"age": 25},
			want:   false,
		},
		{
			name:   "greater than is strict",
			rule:   "age > 30",
			record: Record{"age": 30},
			want:   false,
		},
		{
			name:   "numeric less than",
			rule:   "salary < 50000",
			record: Record{"salary": 40000},
			want:   true,
		},
		{
			name:   "string equality strips quotes",
			rule:   "department = 'Sales'",
			record: Record{"department": "Sales"},
			want:   true,
		},
		{
			name:   "string equality mismatch",
			rule:   "department = 'Sales'",
			record: Record{"department": "Marketing"},
			want:   false,
		},
		{
			name:   "equality compares textual form of numbers",
			rule:   "age = 30",
			record: Record{"age": 30},
			want:   true,
		},
		{
			name:   "numeric value as JSON float",
			rule:   "age > 30",
			record: Record{"age": float64(35)},
			want:   true,
		},
		{
			name:   "numeric value as string",
			rule:   "age > 30",
			record: Record{"age": "35"},
			want:   true,
		},
		{
			name:   "missing attribute is false, not an error",
			rule:   "x > 5",
			record: Record{},
			want:   false,
		},
		{
			name:   "non-numeric record value degrades to false",
			rule:   "age > 30",
			record: Record{"age": "not a number"},
			want:   false,
		},
		{
			name:   "non-numeric rule value degrades to false",
			rule:   "age > 'thirty'",
			record: Record{"age": 35},
			want:   false,
		},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := mustParse(t, tt.rule)
			if got := e.Evaluate(node, tt.record); got != tt.want {
				t.Errorf("Evaluate(%q, %v) = %v, want %v", tt.rule, tt.record, got, tt.want)
			}
		})
	}
}

// Round-trip samples from the original rule corpus.
func TestEvaluate_RoundTrip(t *testing.T) {
	tests := []struct {
		rule   string
		record Record
		want   bool
	}{
		{
			rule:   "(age > 30 AND department = 'Sales') OR (salary < 50000)",
			record: Record{"age": 35, "department": "Sales", "salary": 60000},
			want:   true,
		},
		{
			rule:   "(age > 30 AND department = 'Sales') OR (salary < 50000)",
			record: Record{"age": 25, "department": "Marketing", "salary": 60000},
			want:   false,
		},
		{
			rule:   "age > 30 AND department = 'Sales'",
			record: Record{"age": 35, "department": "Marketing", "salary": 60000},
			want:   false,
		},
		{
			rule:   "(age < 10 AND department = 'Child Labor') OR (salary < 750)",
			record: Record{"age": 5, "department": "Child Labor", "salary": 60000},
			want:   true,
		},
		{
			rule:   "(age > 20 AND department = 'Sales') OR (salary < 90000)",
			record: Record{"age": 25, "department": "Sales", "salary": 80000},
			want:   true,
		},
	}

	e := New()
	for _, tt := range tests {
		node := mustParse(t, tt.rule)
		if got := e.Evaluate(node, tt.record); got != tt.want {
			t.Errorf("Evaluate(%q, %v) = %v, want %v", tt.rule, tt.record, got, tt.want)
		}
	}
}

// The left-to-right fold means AND does not bind tighter than OR.
func TestEvaluate_NoOperatorPrecedence(t *testing.T) {
	node := mustParse(t, "a = '1' OR b = '2' AND c = '3'")
	e := New()

	// ((a OR b) AND c): a matches but c does not, so the result is false
	// under left-to-right folding. Conventional precedence
	// (a OR (b AND c)) would give true here.
	if got := e.Evaluate(node, Record{"a": "1", "b": "9", "c": "9"}); got {
		t.Error("Evaluate() = true, want false: AND must not bind tighter than OR")
	}

	if got := e.Evaluate(node, Record{"a": "9", "b": "2", "c": "3"}); !got {
		t.Error("Evaluate() = false, want true: (a OR b) holds via b and c matches")
	}
}

// Short-circuiting is observed through the reporter callback: the sentinel
// attribute is never present in the record, so every visit of its condition
// reports missing_attribute. A skipped subtree reports nothing.
func TestEvaluate_ShortCircuit(t *testing.T) {
	t.Run("AND skips right when left is false", func(t *testing.T) {
		node := mustParse(t, "age > 100 AND probe = 'x'")

		var probed int
		e := New(WithReporter(func(d Diagnostic) {
			if d.Attribute == "probe" {
				probed++
			}
		}))

		if got := e.Evaluate(node, Record{"age": 10}); got {
			t.Error("Evaluate() = true, want false")
		}
		if probed != 0 {
			t.Errorf("right subtree evaluated %d times, want 0", probed)
		}
	})

	t.Run("OR skips right when left is true", func(t *testing.T) {
		node := mustParse(t, "age > 5 OR probe = 'x'")

		var probed int
		e := New(WithReporter(func(d Diagnostic) {
			if d.Attribute == "probe" {
				probed++
			}
		}))

		if got := e.Evaluate(node, Record{"age": 10}); !got {
			t.Error("Evaluate() = false, want true")
		}
		if probed != 0 {
			t.Errorf("right subtree evaluated %d times, want 0", probed)
		}
	})

	t.Run("AND evaluates right when left is true", func(t *testing.T) {
		node := mustParse(t, "age > 5 AND probe = 'x'")

		var probed int
		e := New(WithReporter(func(d Diagnostic) {
			if d.Attribute == "probe" {
				probed++
			}
		}))

		if got := e.Evaluate(node, Record{"age": 10}); got {
			t.Error("Evaluate() = true, want false")
		}
		if probed != 1 {
			t.Errorf("right subtree evaluated %d times, want 1", probed)
		}
	})
}

func TestEvaluate_Diagnostics(t *testing.T) {
	var diags []Diagnostic
	e := New(WithReporter(func(d Diagnostic) {
		diags = append(diags, d)
	}))

	node := mustParse(t, "missing > 5 OR age > 'NaN'")
	if got := e.Evaluate(node, Record{"age": 35}); got {
		t.Error("Evaluate() = true, want false")
	}

	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(diags), diags)
	}
	if diags[0].Reason != ReasonMissingAttribute || diags[0].Attribute != "missing" {
		t.Errorf("diags[0] = %+v, want missing_attribute on 'missing'", diags[0])
	}
	if diags[1].Reason != ReasonNonNumeric || diags[1].Attribute != "age" {
		t.Errorf("diags[1] = %+v, want non_numeric_operand on 'age'", diags[1])
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	node := mustParse(t, "(age > 30 AND department = 'Sales') OR (salary < 50000)")
	record := Record{"age": 35, "department": "Sales", "salary": 60000}
	e := New()

	first := e.Evaluate(node, record)
	for i := 0; i < 100; i++ {
		if got := e.Evaluate(node, record); got != first {
			t.Fatalf("evaluation %d = %v, want %v", i, got, first)
		}
	}
}

func TestEvaluate_ConcurrentSameTree(t *testing.T) {
	node := mustParse(t, "(age > 30 AND department = 'Sales') OR (salary < 50000)")
	e := New()

	const workers = 16
	done := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		go func() {
			ok := true
			for j := 0; j < 100; j++ {
				if !e.Evaluate(node, Record{"age": 35, "department": "Sales", "salary": 60000}) {
					ok = false
				}
			}
			done <- ok
		}()
	}

	for i := 0; i < workers; i++ {
		if !<-done {
			t.Fatal("concurrent evaluation produced a wrong result")
		}
	}
}

func TestEvaluate_NilTree(t *testing.T) {
	if got := New().Evaluate(nil, Record{"age": 1}); !got {
		t.Error("Evaluate(nil) = false, want true")
	}
}
