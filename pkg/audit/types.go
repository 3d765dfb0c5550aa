package audit

import (
	"context"
	"time"
)

// Event is one recorded rule evaluation.
type Event struct {
	// ID uniquely identifies the event (UUID).
	ID string

	// Owner is the rule namespace the evaluation ran against.
	Owner string

	// RuleCount is how many stored rules were combined for the evaluation.
	RuleCount int

	// Record is the evaluated record serialized as JSON.
	Record string

	// Result is the boolean evaluation outcome.
	Result bool

	// Diagnostics is how many conditions degraded to false during the
	// evaluation.
	Diagnostics int

	// CreatedAt is when the evaluation happened.
	CreatedAt time.Time
}

// Store persists audit events. Implementations must be safe for
// concurrent use.
type Store interface {
	// Save persists one event.
	Save(ctx context.Context, e *Event) error

	// List returns the most recent events for an owner, newest first,
	// limited to limit entries.
	List(ctx context.Context, owner string, limit int) ([]*Event, error)

	// Prune removes events older than the cutoff and reports how many
	// were removed.
	Prune(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases resources held by the store.
	Close() error
}
