// Package sqlite provides a SQLite-backed implementation of the storage port.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

// Adapter implements ports.KVStore on a single SQLite table.
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// SQLite serialises writers anyway; one connection also keeps
	// ":memory:" databases from splitting across the pool.
	db.SetMaxOpenConns(1)

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}

	if err := adapter.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Read returns the value stored under key and whether it exists.
func (a *Adapter) Read(ctx context.Context, key string) ([]byte, bool, error) {
	row := a.db.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE key = ?", key)
	var value []byte
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

// Write upserts the value under key.
func (a *Adapter) Write(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at;
	`
	if _, err := a.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	if _, err := a.db.ExecContext(ctx, "DELETE FROM kv_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	// Databases created before updated_at existed get the column added.
	if _, err := a.db.Exec("ALTER TABLE kv_store ADD COLUMN updated_at DATETIME"); err != nil {
		if !isDuplicateColumnError(err) {
			return err
		}
	}

	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}
