package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a rule does not exist or belongs to a
// different owner.
var ErrNotFound = errors.New("rule not found")

// Rule is one stored rule string. The text is persisted verbatim; parsing
// happens on demand so a stored rule is exactly what its author wrote.
type Rule struct {
	// ID uniquely identifies the rule (UUID).
	ID string

	// Owner is the namespace the rule belongs to. Every API key maps to
	// one owner.
	Owner string

	// Text is the rule expression as written.
	Text string

	// CreatedAt is when the rule was stored.
	CreatedAt time.Time
}

// Backend defines the interface for rule persistence.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Save persists a rule. The rule's ID must be set by the caller.
	Save(ctx context.Context, r *Rule) error

	// Get retrieves one rule by owner and ID. Returns ErrNotFound if the
	// rule does not exist or belongs to another owner.
	Get(ctx context.Context, owner, id string) (*Rule, error)

	// List returns all rules for an owner, oldest first.
	List(ctx context.Context, owner string) ([]*Rule, error)

	// Delete removes one rule by owner and ID. Returns ErrNotFound if the
	// rule does not exist or belongs to another owner.
	Delete(ctx context.Context, owner, id string) error

	// DeleteAll removes every rule for an owner and reports how many were
	// removed.
	DeleteAll(ctx context.Context, owner string) (int, error)

	// Count returns the total number of stored rules across all owners.
	Count(ctx context.Context) (int, error)

	// Close releases resources held by the backend.
	Close() error
}
