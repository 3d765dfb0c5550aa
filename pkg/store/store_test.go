package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

// backends returns one constructor per Backend implementation so every
// test runs against both.
func backends(t *testing.T) map[string]func(t *testing.T) Backend {
	return map[string]func(t *testing.T) Backend{
		"memory": func(t *testing.T) Backend {
			return NewMemoryBackend()
		},
		"sqlite": func(t *testing.T) Backend {
			b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "rules.db"))
			if err != nil {
				t.Fatalf("NewSQLiteBackend() failed: %v", err)
			}
			return b
		},
	}
}

func newRule(owner, text string) *Rule {
	return &Rule{
		ID:        uuid.NewString(),
		Owner:     owner,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

func TestBackend_SaveAndGet(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			defer b.Close()
			ctx := context.Background()

			r := newRule("alice", "age > 30")
			if err := b.Save(ctx, r); err != nil {
				t.Fatalf("Save() failed: %v", err)
			}

			got, err := b.Get(ctx, "alice", r.ID)
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if got.Text != "age > 30" || got.Owner != "alice" {
				t.Errorf("Get() = %+v, want saved rule", got)
			}
		})
	}
}

func TestBackend_GetWrongOwner(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			defer b.Close()
			ctx := context.Background()

			r := newRule("alice", "age > 30")
			if err := b.Save(ctx, r); err != nil {
				t.Fatalf("Save() failed: %v", err)
			}

			if _, err := b.Get(ctx, "bob", r.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() with wrong owner error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestBackend_ListOrderedAndScoped(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			defer b.Close()
			ctx := context.Background()

			base := time.Now()
			for i, text := range []string{"a > 1", "b > 2", "c > 3"} {
				r := newRule("alice", text)
				r.CreatedAt = base.Add(time.Duration(i) * time.Second)
				if err := b.Save(ctx, r); err != nil {
					t.Fatalf("Save() failed: %v", err)
				}
			}
			if err := b.Save(ctx, newRule("bob", "x > 9")); err != nil {
				t.Fatalf("Save() failed: %v", err)
			}

			rules, err := b.List(ctx, "alice")
			if err != nil {
				t.Fatalf("List() failed: %v", err)
			}
			if len(rules) != 3 {
				t.Fatalf("len(List()) = %d, want 3", len(rules))
			}
			for i, want := range []string{"a > 1", "b > 2", "c > 3"} {
				if rules[i].Text != want {
					t.Errorf("rules[%d].Text = %q, want %q", i, rules[i].Text, want)
				}
			}
		})
	}
}

func TestBackend_Delete(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			defer b.Close()
			ctx := context.Background()

			r := newRule("alice", "age > 30")
			if err := b.Save(ctx, r); err != nil {
				t.Fatalf("Save() failed: %v", err)
			}

			if err := b.Delete(ctx, "alice", r.ID); err != nil {
				t.Fatalf("Delete() failed: %v", err)
			}
			if _, err := b.Get(ctx, "alice", r.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
			}

			if err := b.Delete(ctx, "alice", r.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete() error = %v, want ErrNotFound", err)
			}
			if err := b.Delete(ctx, "alice", uuid.NewString()); !errors.Is(err, ErrNotFound) {
				t.Errorf("Delete() of unknown rule error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestBackend_DeleteAll(t *testing.T) {
	for name, newBackend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			defer b.Close()
			ctx := context.Background()

			for _, text := range []string{"a > 1", "b > 2"} {
				if err := b.Save(ctx, newRule("alice", text)); err != nil {
					t.Fatalf("Save() failed: %v", err)
				}
			}
			if err := b.Save(ctx, newRule("bob", "x > 9")); err != nil {
				t.Fatalf("Save() failed: %v", err)
			}

			removed, err := b.DeleteAll(ctx, "alice")
			if err != nil {
				t.Fatalf("DeleteAll() failed: %v", err)
			}
			if removed != 2 {
				t.Errorf("DeleteAll() removed = %d, want 2", removed)
			}

			// Bob's rules are untouched.
			remaining, err := b.List(ctx, "bob")
			if err != nil {
				t.Fatalf("List() failed: %v", err)
			}
			if len(remaining) != 1 {
				t.Errorf("len(bob rules) = %d, want 1", len(remaining))
			}

			total, err := b.Count(ctx)
			if err != nil {
				t.Fatalf("Count() failed: %v", err)
			}
			if total != 1 {
				t.Errorf("Count() = %d, want 1", total)
			}
		})
	}
}

func TestSQLiteBackend_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.db")
	ctx := context.Background()

	b, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("NewSQLiteBackend() failed: %v", err)
	}
	r := newRule("alice", "salary < 50000")
	if err := b.Save(ctx, r); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "alice", r.ID)
	if err != nil {
		t.Fatalf("Get() after reopen failed: %v", err)
	}
	if got.Text != "salary < 50000" {
		t.Errorf("Text = %q, want %q", got.Text, "salary < 50000")
	}
}

func TestSQLiteBackend_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteBackend(""); err == nil {
		t.Error("NewSQLiteBackend(\"\") succeeded, want error")
	}
}
