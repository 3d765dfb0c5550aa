package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore persists audit events in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the audit database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("audit db path cannot be empty")
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		rule_count INTEGER NOT NULL,
		record TEXT NOT NULL,
		result INTEGER NOT NULL,
		diagnostics INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_owner_created ON audit_events(owner, created_at);
	CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_events(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save persists one event.
func (s *SQLiteStore) Save(ctx context.Context, e *Event) error {
	result := 0
	if e.Result {
		result = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, owner, rule_count, record, result, diagnostics, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Owner, e.RuleCount, e.Record, result, e.Diagnostics, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save audit event %s: %w", e.ID, err)
	}
	return nil
}

// List returns the most recent events for an owner, newest first.
func (s *SQLiteStore) List(ctx context.Context, owner string, limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, rule_count, record, result, diagnostics, created_at
		 FROM audit_events WHERE owner = ? ORDER BY created_at DESC LIMIT ?`,
		owner, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events for %s: %w", owner, err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			e         Event
			result    int
			createdAt int64
		)
		if err := rows.Scan(&e.ID, &e.Owner, &e.RuleCount, &e.Record, &result, &e.Diagnostics, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.Result = result != 0
		e.CreatedAt = time.Unix(0, createdAt)
		events = append(events, &e)
	}

	return events, rows.Err()
}

// Prune removes events older than the cutoff.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM audit_events WHERE created_at < ?`,
		olderThan.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit events: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
