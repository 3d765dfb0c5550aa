package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryBackend implements Backend with an in-memory map. It is used for
// tests and for deployments that do not need rules to survive restarts.
type MemoryBackend struct {
	mu    sync.RWMutex
	rules map[string]*Rule // keyed by ID
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		rules: make(map[string]*Rule),
	}
}

// Save persists a rule.
func (m *MemoryBackend) Save(ctx context.Context, r *Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *r
	m.rules[r.ID] = &clone
	return nil
}

// Get retrieves one rule by owner and ID.
func (m *MemoryBackend) Get(ctx context.Context, owner, id string) (*Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rules[id]
	if !ok || r.Owner != owner {
		return nil, ErrNotFound
	}

	clone := *r
	return &clone, nil
}

// List returns all rules for an owner, oldest first.
func (m *MemoryBackend) List(ctx context.Context, owner string) ([]*Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rules []*Rule
	for _, r := range m.rules {
		if r.Owner == owner {
			clone := *r
			rules = append(rules, &clone)
		}
	}

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].ID < rules[j].ID
		}
		return rules[i].CreatedAt.Before(rules[j].CreatedAt)
	})

	return rules, nil
}

// Delete removes one rule by owner and ID.
func (m *MemoryBackend) Delete(ctx context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rules[id]
	if !ok || r.Owner != owner {
		return ErrNotFound
	}

	delete(m.rules, id)
	return nil
}

// DeleteAll removes every rule for an owner.
func (m *MemoryBackend) DeleteAll(ctx context.Context, owner string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int
	for id, r := range m.rules {
		if r.Owner == owner {
			delete(m.rules, id)
			removed++
		}
	}
	return removed, nil
}

// Count returns the total number of stored rules.
func (m *MemoryBackend) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules), nil
}

// Close is a no-op for the memory backend.
func (m *MemoryBackend) Close() error {
	return nil
}
