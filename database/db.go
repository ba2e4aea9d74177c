// Package database is the data-access core: a pooled SQLite connection
// manager, one repository per entity (accounts, notes, folders), a
// predicate-based query builder shared by the paginated and count
// queries, and the bulk-sync engine.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps a *sql.DB connection pool. It is constructed explicitly and
// handed to repositories; there is no package-level instance.
type DB struct {
	*sql.DB
}

// New opens the database at dbPath and configures the connection pool.
func New(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// WAL lets readers proceed while a writer holds the lock.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// Transaction runs fn inside a transaction. The transaction is committed
// when fn returns nil and rolled back otherwise; the underlying
// connection goes back to the pool either way.
func (db *DB) Transaction(fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// HealthCheck performs a no-op round-trip against the pool. It reports
// failure instead of returning an error so callers can poll it freely.
func (db *DB) HealthCheck() bool {
	if err := db.Ping(); err != nil {
		return false
	}
	var one int
	if err := db.QueryRow("SELECT 1").Scan(&one); err != nil {
		return false
	}
	return one == 1
}

func (db *DB) Close() error {
	return db.DB.Close()
}
