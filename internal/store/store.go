package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// tsLayout is RFC3339 with fixed-width nanoseconds. time.RFC3339Nano trims
// trailing zeros, which breaks lexicographic ORDER BY on the TEXT column for
// timestamps within the same second; this layout keeps string order equal to
// time order.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists accounts, positions and the append-only transaction log in
// SQLite. The account aggregate (balance + positions) and its log entry are
// always written in one sql transaction; there is no code path that saves
// them independently.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite：单连接更稳定
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
