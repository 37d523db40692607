package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SchemaVersion is the layout this package writes, kept in PRAGMA user_version.
const SchemaVersion = 1

// ErrSchemaTooNew is returned when a book was written by a newer bookkeep.
var ErrSchemaTooNew = errors.New("book database schema is newer than supported")

// Connection is an open book database.
type Connection struct {
	db   *sql.DB
	path string
}

// Open opens the book at dbPath, creating the file and its tables on first
// use. Writers wait up to five seconds for a lock held by another process.
func Open(dbPath string) (*Connection, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", dbPath)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn := &Connection{db: sqlDB, path: dbPath}
	if err := conn.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return conn, nil
}

// migrate brings an empty or current book up to SchemaVersion.
func (c *Connection) migrate() error {
	version, err := c.SchemaVersion()
	if err != nil {
		return err
	}
	if version > SchemaVersion {
		return fmt.Errorf("%w: %s has version %d, this build supports %d", ErrSchemaTooNew, c.path, version, SchemaVersion)
	}

	return c.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(Schema); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
		return nil
	})
}

// SchemaVersion reads the version stamped on the book.
func (c *Connection) SchemaVersion() (int, error) {
	var version int
	if err := c.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Close closes the database.
func (c *Connection) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database file path.
func (c *Connection) Path() string {
	return c.path
}

// QueryRow runs a query returning at most one row.
func (c *Connection) QueryRow(query string, args ...any) *sql.Row {
	return c.db.QueryRow(query, args...)
}

// Query runs a query returning rows.
func (c *Connection) Query(query string, args ...any) (*sql.Rows, error) {
	return c.db.Query(query, args...)
}

// Exec runs a statement that returns no rows.
func (c *Connection) Exec(query string, args ...any) (sql.Result, error) {
	return c.db.Exec(query, args...)
}

// Transaction runs fn in a transaction and commits when fn returns nil.
// Any error or panic in fn rolls the transaction back.
func (c *Connection) Transaction(fn func(*sql.Tx) error) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
