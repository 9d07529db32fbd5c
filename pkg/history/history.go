// Package history keeps a local log of clipboard transfers in SQLite so a
// table pasted or copied earlier can be shown or restored.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type Direction string

const (
	Paste Direction = "paste"
	Copy  Direction = "copy"
)

type Kind string

const (
	KindTable Kind = "table"
	KindArray Kind = "array"
	KindText  Kind = "text"
)

var (
	ErrNotFound  = errors.New("history entry not found")
	ErrAmbiguous = errors.New("history entry id is ambiguous")
)

type Config struct {
	// MaxEntries is the number of entries kept; 0 keeps everything.
	MaxEntries int
	// TTL drops entries older than this; 0 keeps them forever.
	TTL time.Duration
}

var DefaultConfig = Config{
	MaxEntries: 200,
	TTL:        30 * 24 * time.Hour,
}

type Entry struct {
	ID        string    `json:"id" yaml:"id"`
	Direction Direction `json:"direction" yaml:"direction"`
	Kind      Kind      `json:"kind" yaml:"kind"`
	Rows      int       `json:"rows" yaml:"rows"`
	Cols      int       `json:"cols" yaml:"cols"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// ShortID is the first block of the id, enough to address an entry.
func (e Entry) ShortID() string {
	if len(e.ID) >= 8 {
		return e.ID[:8]
	}
	return e.ID
}

type Store struct {
	db     *sql.DB
	config Config
	now    func() time.Time
}

const selectEntries = `SELECT id, direction, kind, row_count, col_count, content, created_at FROM entries`

// DBPath returns the default database location under the user cache dir.
func DBPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "clipdata", "history.db")
}

func Open(dbPath string, config Config) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps sqlite from returning SQLITE_BUSY inside a process.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, config: config, now: time.Now}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

func (s *Store) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			direction TEXT NOT NULL,
			kind TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			col_count INTEGER NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores e, filling in ID and CreatedAt when unset, and prunes the
// log. The stored entry is returned.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (id, direction, kind, row_count, col_count, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, string(e.Direction), string(e.Kind), e.Rows, e.Cols, e.Content, e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to save history entry: %w", err)
	}

	if _, err := s.Prune(ctx); err != nil {
		return e, err
	}
	return e, nil
}

// List returns the newest entries first; limit <= 0 returns all of them.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := selectEntries + ` ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Get returns the entry whose id starts with id.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, selectEntries+` WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}

	switch len(entries) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return &entries[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
}

// Latest returns the most recent entry, optionally filtered by direction.
func (s *Store) Latest(ctx context.Context, dir Direction) (*Entry, error) {
	query := selectEntries
	args := []any{}
	if dir != "" {
		query += ` WHERE direction = ?`
		args = append(args, string(dir))
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT 1`

	var e Entry
	if err := scanEntry(s.db.QueryRowContext(ctx, query, args...), &e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}
	return &e, nil
}

// Clear deletes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

// Prune drops entries older than the TTL, then all but the newest
// MaxEntries.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	var removed int64

	if s.config.TTL > 0 {
		cutoff := s.now().Add(-s.config.TTL).UTC()
		res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE created_at < ?`, cutoff)
		if err != nil {
			return 0, fmt.Errorf("failed to prune history: %w", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}

	if s.config.MaxEntries > 0 {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM entries WHERE id NOT IN (
				SELECT id FROM entries ORDER BY created_at DESC, rowid DESC LIMIT ?
			)
		`, s.config.MaxEntries)
		if err != nil {
			return removed, fmt.Errorf("failed to prune history: %w", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}

	return removed, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner, e *Entry) error {
	var dir, kind string
	if err := row.Scan(&e.ID, &dir, &kind, &e.Rows, &e.Cols, &e.Content, &e.CreatedAt); err != nil {
		return err
	}
	e.Direction = Direction(dir)
	e.Kind = Kind(kind)
	return nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := scanEntry(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return entries, nil
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
