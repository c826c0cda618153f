package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DB provides SQLite-based storage for alias maps, cached remote
// classifications, and the entity graph.
//
// Design decision: We use a single database file for all concerns rather
// than one file per session. Alias maps, cache entries, and graph rows
// are small, and a single file keeps backup and inspection trivial.
type DB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a DB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are
// created; otherwise a missing database is an error.
func Open(dbDir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dbDir, "whiteout.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY under concurrent pipeline runs.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	d := &DB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := d.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (d *DB) createTables() error {
	schema := `
	-- Alias maps persist original-text to alias assignments per session
	CREATE TABLE IF NOT EXISTS alias_maps (
		session_id TEXT NOT NULL,
		original TEXT NOT NULL,
		alias TEXT NOT NULL,
		PRIMARY KEY(session_id, original)
	);

	-- Classification cache stores remote touchstone results per term.
	-- expires_at is a unix-millisecond deadline enforced on read.
	CREATE TABLE IF NOT EXISTS classification_cache (
		term TEXT PRIMARY KEY,
		results_json TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	);

	-- Known entities canonicalized across documents
	CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		canonical TEXT NOT NULL,
		type TEXT NOT NULL,
		first_seen INTEGER NOT NULL,
		last_seen INTEGER NOT NULL,
		document_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_entities_canonical ON entities(canonical);
	CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(type);

	-- Occurrences tie entities to the documents they appeared in
	CREATE TABLE IF NOT EXISTS occurrences (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id TEXT NOT NULL,
		document_id TEXT NOT NULL,
		original_text TEXT NOT NULL,
		alias TEXT NOT NULL,
		confirmed INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_occ_entity ON occurrences(entity_id);
	CREATE INDEX IF NOT EXISTS idx_occ_document ON occurrences(document_id);

	-- Processed documents
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		processed_at INTEGER NOT NULL,
		entity_count INTEGER NOT NULL DEFAULT 0,
		fingerprint TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_doc_fingerprint ON documents(fingerprint);
	`

	_, err := d.db.ExecContext(context.Background(), schema)
	return err
}
