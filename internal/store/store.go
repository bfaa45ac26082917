package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema versions, kept in PRAGMA user_version:
// 1 - sessions, frames, results, reverts
const currentSchemaVersion = 1

// MemoryPath opens a private in-memory database. The harness uses it for
// scenario runs that are not recorded.
const MemoryPath = ":memory:"

type pragma struct {
	name  string
	value string
}

// An in-memory database reports journal_mode "memory" and ignores WAL.
var pragmas = []pragma{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
}

// Store persists recorded sessions in SQLite: their input frames, the
// judgement results and the reverts issued by rewinds.
type Store struct {
	db *sql.DB
}

// Open creates or opens the session database at path and migrates it.
// Opening the same file again is a no-op migration.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("open store: empty database path")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	// One connection: SQLite has a single writer, and each connection to
	// :memory: would see its own empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect store %s: %w", path, err)
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// migrate brings the schema to currentSchemaVersion. A database written by
// a newer holdjudge is refused rather than downgraded.
func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch {
	case version > currentSchemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported %d", version, currentSchemaVersion)
	case version == currentSchemaVersion:
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return tx.Commit()
}

// pragmaValue reads the current value of a pragma.
func (s *Store) pragmaValue(ctx context.Context, name string) (string, error) {
	var value string
	if err := s.db.QueryRowContext(ctx, "PRAGMA "+name).Scan(&value); err != nil {
		return "", fmt.Errorf("read pragma %s: %w", name, err)
	}
	return value, nil
}
