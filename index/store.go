package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/pslkit/syntax"
)

var log = commonlog.GetLogger("pslkit.index")

// ErrNotFound indicates the routine is not in the index.
var ErrNotFound = errors.New("routine not in index")

// MemoryPath opens a private in-memory index.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS routines (
	path    TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	outline BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS members (
	routine TEXT NOT NULL REFERENCES routines(path) ON DELETE CASCADE,
	name    TEXT NOT NULL,
	lname   TEXT NOT NULL,
	kind    TEXT NOT NULL,
	type    TEXT NOT NULL,
	line    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS members_lname ON members(lname);
CREATE INDEX IF NOT EXISTS members_routine ON members(routine);
`

// Entry is one indexed symbol.
type Entry struct {
	Path string
	Name string
	Kind string
	Type string
	Line int
}

// Store is the SQLite-backed symbol index.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the index at path. The parent directory is created
// when missing.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	// An in-memory database is private to its connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring index: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	log.Debugf("opened index %s", path)
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put replaces everything indexed for path with the members of doc.
func (s *Store) Put(ctx context.Context, path string, doc *syntax.Document) error {
	outline := OutlineOf(path, doc)
	data, err := MarshalOutline(outline)
	if err != nil {
		return fmt.Errorf("encoding outline of %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", path, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM members WHERE routine = ?", path); err != nil {
		return fmt.Errorf("indexing %s: %w", path, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO routines (path, name, outline) VALUES (?, ?, ?)",
		path, outline.Routine, data,
	); err != nil {
		return fmt.Errorf("indexing %s: %w", path, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO members (routine, name, lname, kind, type, line) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("indexing %s: %w", path, err)
	}
	defer stmt.Close()

	for _, sym := range outline.Symbols {
		if _, err := stmt.ExecContext(ctx,
			path, sym.Name, strings.ToLower(sym.Name), sym.Kind, sym.Type, sym.Line,
		); err != nil {
			return fmt.Errorf("indexing %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("indexing %s: %w", path, err)
	}
	return nil
}

// Remove drops path from the index. Removing an unknown path is not an
// error.
func (s *Store) Remove(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM routines WHERE path = ?", path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// Outline returns the stored outline of path.
func (s *Store) Outline(ctx context.Context, path string) (*Outline, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT outline FROM routines WHERE path = ?", path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying outline: %w", err)
	}
	return UnmarshalOutline(data)
}

// Paths returns every indexed routine path, sorted.
func (s *Store) Paths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT path FROM routines ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("listing routines: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("listing routines: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Lookup returns the routines and members named name, ignoring case.
// Routines come first, then members ordered by path and line.
func (s *Store) Lookup(ctx context.Context, name string) ([]Entry, error) {
	lower := strings.ToLower(name)
	return s.query(ctx, `
		SELECT * FROM (
			SELECT path, name, ? AS kind, '' AS type, 0 AS line FROM routines WHERE lower(name) = ?
			UNION ALL
			SELECT routine, name, kind, type, line FROM members WHERE lname = ?
		) ORDER BY kind <> ?, path, line`,
		KindRoutine, lower, lower, KindRoutine)
}

// Search returns the routines and members whose name starts with prefix,
// ignoring case, ordered by name then path.
func (s *Store) Search(ctx context.Context, prefix string) ([]Entry, error) {
	lower := strings.ToLower(prefix)
	n := utf8.RuneCountInString(lower)
	return s.query(ctx, `
		SELECT * FROM (
			SELECT path, name, ? AS kind, '' AS type, 0 AS line FROM routines WHERE substr(lower(name), 1, ?) = ?
			UNION ALL
			SELECT routine, name, kind, type, line FROM members WHERE substr(lname, 1, ?) = ?
		) ORDER BY lower(name), path, line`,
		KindRoutine, n, lower, n, lower)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Path, &e.Name, &e.Kind, &e.Type, &e.Line); err != nil {
			return nil, fmt.Errorf("querying index: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
