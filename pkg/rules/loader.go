package rules

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ruleforge/ruleforge/pkg/store"
)

// Loader syncs the contents of a rules file into a storage backend under
// a fixed owner. A sync replaces the owner's stored rules with the file's
// rules so the file remains the source of truth for that owner.
type Loader struct {
	backend store.Backend
	owner   string
	path    string
	logger  *slog.Logger
}

// NewLoader creates a loader for the given rules file, storing rules
// under owner.
func NewLoader(backend store.Backend, owner, path string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		backend: backend,
		owner:   owner,
		path:    path,
		logger:  logger.With("component", "rules.loader"),
	}
}

// Sync loads the rules file and replaces the owner's stored rules with
// its contents. A file that fails to load or parse leaves the store
// untouched.
func (l *Loader) Sync(ctx context.Context) error {
	texts, err := LoadFile(l.path)
	if err != nil {
		return err
	}

	removed, err := l.backend.DeleteAll(ctx, l.owner)
	if err != nil {
		return fmt.Errorf("failed to clear rules for %s: %w", l.owner, err)
	}

	now := time.Now()
	for i, text := range texts {
		r := &store.Rule{
			ID:    uuid.NewString(),
			Owner: l.owner,
			Text:  text,
			// Preserve file order for List.
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		}
		if err := l.backend.Save(ctx, r); err != nil {
			return fmt.Errorf("failed to store rule %q: %w", text, err)
		}
	}

	l.logger.Info("rules file synced",
		"path", l.path,
		"owner", l.owner,
		"replaced", removed,
		"loaded", len(texts),
	)

	return nil
}
