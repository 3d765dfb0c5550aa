package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteBackend implements Backend using SQLite for persistence. It is
// suitable for single-instance deployments where rules must survive
// restarts.
//
// The database runs in WAL mode with a busy timeout; statements are
// prepared once at startup.
type SQLiteBackend struct {
	db *sql.DB

	saveStmt      *sql.Stmt
	getStmt       *sql.Stmt
	listStmt      *sql.Stmt
	deleteStmt    *sql.Stmt
	deleteAllStmt *sql.Stmt
	countStmt     *sql.Stmt
}

// SQLiteBackendConfig configures the SQLite backend.
type SQLiteBackendConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteBackend creates a SQLite backend with default settings.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	return NewSQLiteBackendWithConfig(SQLiteBackendConfig{Path: path})
}

// NewSQLiteBackendWithConfig creates a SQLite backend with custom
// configuration.
func NewSQLiteBackendWithConfig(cfg SQLiteBackendConfig) (*SQLiteBackend, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	backend := &SQLiteBackend{db: db}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := backend.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return backend, nil
}

func (s *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rules (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		rule_text TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rules_owner ON rules(owner, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteBackend) prepareStatements() error {
	var err error

	if s.saveStmt, err = s.db.Prepare(
		`INSERT OR REPLACE INTO rules (id, owner, rule_text, created_at) VALUES (?, ?, ?, ?)`,
	); err != nil {
		return fmt.Errorf("save statement: %w", err)
	}

	if s.getStmt, err = s.db.Prepare(
		`SELECT id, owner, rule_text, created_at FROM rules WHERE id = ? AND owner = ?`,
	); err != nil {
		return fmt.Errorf("get statement: %w", err)
	}

	if s.listStmt, err = s.db.Prepare(
		`SELECT id, owner, rule_text, created_at FROM rules WHERE owner = ? ORDER BY created_at, id`,
	); err != nil {
		return fmt.Errorf("list statement: %w", err)
	}

	if s.deleteStmt, err = s.db.Prepare(
		`DELETE FROM rules WHERE id = ? AND owner = ?`,
	); err != nil {
		return fmt.Errorf("delete statement: %w", err)
	}

	if s.deleteAllStmt, err = s.db.Prepare(
		`DELETE FROM rules WHERE owner = ?`,
	); err != nil {
		return fmt.Errorf("delete-all statement: %w", err)
	}

	if s.countStmt, err = s.db.Prepare(
		`SELECT COUNT(*) FROM rules`,
	); err != nil {
		return fmt.Errorf("count statement: %w", err)
	}

	return nil
}

// Save persists a rule.
func (s *SQLiteBackend) Save(ctx context.Context, r *Rule) error {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.saveStmt.ExecContext(ctx, r.ID, r.Owner, r.Text, createdAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save rule %s: %w", r.ID, err)
	}
	return nil
}

// Get retrieves one rule by owner and ID.
func (s *SQLiteBackend) Get(ctx context.Context, owner, id string) (*Rule, error) {
	row := s.getStmt.QueryRowContext(ctx, id, owner)

	r, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rule %s: %w", id, err)
	}
	return r, nil
}

// List returns all rules for an owner, oldest first.
func (s *SQLiteBackend) List(ctx context.Context, owner string) ([]*Rule, error) {
	rows, err := s.listStmt.QueryContext(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules for %s: %w", owner, err)
	}
	defer rows.Close()

	var rules []*Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, r)
	}

	return rules, rows.Err()
}

// Delete removes one rule by owner and ID.
func (s *SQLiteBackend) Delete(ctx context.Context, owner, id string) error {
	res, err := s.deleteStmt.ExecContext(ctx, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every rule for an owner.
func (s *SQLiteBackend) DeleteAll(ctx context.Context, owner string) (int, error) {
	res, err := s.deleteAllStmt.ExecContext(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("failed to delete rules for %s: %w", owner, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// Count returns the total number of stored rules.
func (s *SQLiteBackend) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.countStmt.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rules: %w", err)
	}
	return n, nil
}

// Close releases the prepared statements and the database handle.
func (s *SQLiteBackend) Close() error {
	for _, stmt := range []*sql.Stmt{
		s.saveStmt, s.getStmt, s.listStmt, s.deleteStmt, s.deleteAllStmt, s.countStmt,
	} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRule(s scanner) (*Rule, error) {
	var (
		r         Rule
		createdAt int64
	)
	if err := s.Scan(&r.ID, &r.Owner, &r.Text, &createdAt); err != nil {
		return nil, err
	}
	r.CreatedAt = time.Unix(0, createdAt)
	return &r, nil
}
