// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary builds
// without CGo. Use ":memory:" as the path for tests.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides repository methods.
// It implements both repository.FlashcardSetRepository and repository.UserRepository.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath, applies connection pragmas and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pooled connection to ":memory:" would be a separate, empty
	// database, and PRAGMA foreign_keys is per connection. One connection
	// keeps both the schema and the pragma consistent.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Needed for ON DELETE CASCADE from users to flashcard_sets.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS makes it safe to run
// on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// summaries and questions are stored as JSON arrays: they are always read
	// and written as a whole, never queried by entry.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS flashcard_sets (
			id                 TEXT PRIMARY KEY,
			owner_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			original_file_name TEXT NOT NULL DEFAULT '',
			summaries          TEXT NOT NULL DEFAULT '[]',
			questions          TEXT NOT NULL DEFAULT '[]',
			created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_flashcard_sets_owner_created
			ON flashcard_sets(owner_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating flashcard_sets table: %w", err)
	}

	return nil
}
