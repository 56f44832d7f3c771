// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mdhender/bvh"
)

// Import status values.
const (
	ImportStatusImported  = "imported"
	ImportStatusDuplicate = "duplicate"
	ImportStatusFailed    = "failed"
)

// Import is one attempt to import a file.
type Import struct {
	ID         int64
	Path       string
	SHA256     string
	DocumentID string // empty if the import failed
	Status     string
	ErrorCode  string
	ErrorMsg   string
	CreatedAt  time.Time
}

// RecordImport logs the outcome of an import. If cause is not nil the
// import is recorded as failed, with the error's code and message.
func (s *SQLiteStore) RecordImport(ctx context.Context, path, sha256, documentID string, duplicate bool, cause error) (int64, error) {
	status := ImportStatusImported
	if duplicate {
		status = ImportStatusDuplicate
	}
	var errorCode, errorMsg sql.NullString
	if cause != nil {
		status = ImportStatusFailed
		errorCode = sql.NullString{String: bvh.ErrorCode(cause), Valid: true}
		errorMsg = sql.NullString{String: cause.Error(), Valid: true}
	}
	docID := sql.NullString{String: documentID, Valid: documentID != ""}

	const query = `
		INSERT INTO imports (path, sha256, document_id, status, error_code, error_msg, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		path,
		sha256,
		docID,
		status,
		errorCode,
		errorMsg,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert import: %w", err)
	}
	return result.LastInsertId()
}

// ListImports returns the most recent imports, newest first.
func (s *SQLiteStore) ListImports(ctx context.Context, limit int) ([]Import, error) {
	const query = `
		SELECT id, path, sha256, document_id, status, error_code, error_msg, created_at
		FROM imports
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	var list []Import
	for rows.Next() {
		var imp Import
		var docID, errorCode, errorMsg sql.NullString
		var createdAt string
		if err := rows.Scan(&imp.ID, &imp.Path, &imp.SHA256, &docID, &imp.Status, &errorCode, &errorMsg, &createdAt); err != nil {
			return nil, err
		}
		imp.DocumentID, imp.ErrorCode, imp.ErrorMsg = docID.String, errorCode.String, errorMsg.String
		imp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		list = append(list, imp)
	}
	return list, rows.Err()
}
