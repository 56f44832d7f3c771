// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package stages

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mdhender/bvh"
	"github.com/mdhender/bvh/parsers"
	"github.com/spf13/afero"
)

// IngestService parses BVH files and saves them to a store.
type IngestService struct {
	store   IngestStore
	fs      afero.Fs
	options []parsers.Option
	logger  *slog.Logger
}

// IngestStore defines the store operations needed by IngestService.
type IngestStore interface {
	SaveDocument(ctx context.Context, name, sha256 string, doc *bvh.Document) (string, bool, error)
	RecordImport(ctx context.Context, path, sha256, documentID string, duplicate bool, cause error) (int64, error)
}

// NewIngestService creates a new IngestService that reads from the OS file system.
func NewIngestService(store IngestStore, logger *slog.Logger, options ...parsers.Option) *IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestService{
		store:   store,
		fs:      afero.NewOsFs(),
		options: options,
		logger:  logger,
	}
}

// SetFS sets the filesystem for testing.
func (s *IngestService) SetFS(fs afero.Fs) {
	s.fs = fs
}

// IngestResult contains the result of an ingest operation.
type IngestResult struct {
	Path       string
	DocumentID string
	Joints     int
	Frames     int
	Duplicate  bool // true if the content was already stored (idempotent no-op)
}

// IngestFile parses a single file and saves it. Every attempt, including
// failures, is recorded in the store's import log.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*IngestResult, error) {
	in, err := parsers.ReadInput(s.fs, path, s.options...)
	if err != nil {
		err = &ErrReadFile{Path: path, Err: err}
		s.record(ctx, path, "", "", false, err)
		return nil, err
	}

	doc, err := in.Parse()
	if err != nil {
		err = &ErrParse{Path: path, Err: err}
		s.record(ctx, path, in.SHA256, "", false, err)
		return nil, err
	}

	id, duplicate, err := s.store.SaveDocument(ctx, in.Name, in.SHA256, doc)
	if err != nil {
		return nil, &ErrDatabase{Op: "save document", Err: err}
	}
	s.record(ctx, path, in.SHA256, id, duplicate, nil)

	s.logger.Info("ingest: file",
		"path", path,
		"document", id,
		"duplicate", duplicate,
		"joints", len(doc.Joints()),
		"frames", doc.BoundFrames(),
	)
	return &IngestResult{
		Path:       path,
		DocumentID: id,
		Joints:     len(doc.Joints()),
		Frames:     doc.BoundFrames(),
		Duplicate:  duplicate,
	}, nil
}

// IngestPath ingests root, or every BVH file below root if it is a directory.
//
// Files that cannot be read or parsed are skipped and their errors joined
// into the returned error. A database error stops the run.
func (s *IngestService) IngestPath(ctx context.Context, root string) ([]IngestResult, error) {
	paths, err := parsers.CollectInputs(s.fs, root)
	if err != nil {
		return nil, &ErrReadFile{Path: root, Err: err}
	}

	var results []IngestResult
	var errs []error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := s.IngestFile(ctx, path)
		if err != nil {
			var dbErr *ErrDatabase
			if errors.As(err, &dbErr) {
				return results, err
			}
			s.logger.Warn("ingest: skipped", "path", path, "code", ErrorCode(err), "error", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, *result)
	}
	return results, errors.Join(errs...)
}

func (s *IngestService) record(ctx context.Context, path, sha256, documentID string, duplicate bool, cause error) {
	if _, err := s.store.RecordImport(ctx, path, sha256, documentID, duplicate, cause); err != nil {
		s.logger.Error("ingest: record import", "path", path, "error", err)
	}
}
