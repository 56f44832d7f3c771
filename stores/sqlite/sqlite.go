// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package store persists parsed BVH documents in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens an in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore is a SQLite-backed store for BVH documents.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new in-memory SQLite store with schema loaded.
func NewSQLiteStore(ctx context.Context) (*SQLiteStore, error) {
	return Open(ctx, MemoryPath)
}

// Open opens (creating if needed) the database at path and applies the schema.
// Use MemoryPath for an in-memory database.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	var dsn string
	if path == MemoryPath {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	} else {
		// Apply PRAGMA's per-connection via DSN so the pool always has them.
		// modernc.org/sqlite supports repeated _pragma=... parameters.
		dsn = fmt.Sprintf(
			"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)",
			path,
		)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == MemoryPath {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// CompactDatabase compacts a SQLite database file by running VACUUM and checkpointing WAL.
func CompactDatabase(ctx context.Context, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("database file does not exist: %s", path)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Checkpoint WAL to merge all changes into the main database file
	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpoint WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// TableStats returns the number of rows in each table.
func (s *SQLiteStore) TableStats(ctx context.Context) (map[string]int, error) {
	stats := make(map[string]int)
	for _, table := range []string{"documents", "joints", "channels", "samples", "imports"} {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		stats[table] = n
	}
	return stats, nil
}
