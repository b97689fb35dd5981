// Package store keeps eva's persistent state: the REPL command history and
// an archive of trees the user has produced, in a SQLite database inside the
// data directory.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // enable the "sqlite" SQL driver
)

// DBName is the database file inside the data directory.
const DBName = "eva.db"

// ErrNoMatchingCmd is returned when no history entry satisfies a query.
var ErrNoMatchingCmd = errors.New("no matching command line")

// ErrNoTree is returned when a tree id is not in the archive.
var ErrNoTree = errors.New("no such tree")

var initTable = map[string]string{
	"history": `CREATE TABLE IF NOT EXISTS history (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		line TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`,
	"trees": `CREATE TABLE IF NOT EXISTS trees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		nodes INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		doc BLOB NOT NULL
	)`,
}

// Store is the permanent storage backend for eva.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database in dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filepath.Join(dataDir, DBName))
	if err != nil {
		return nil, err
	}
	// one writer at a time; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)
	st, err := NewStoreDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

// NewStoreDB creates a new Store with a custom database. The database must be
// a SQLite database.
func NewStoreDB(db *sql.DB) (*Store, error) {
	for t, q := range initTable {
		if _, err := db.Exec(q); err != nil {
			return nil, fmt.Errorf("failed to initialize table %s: %w", t, err)
		}
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
