// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package stages_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/mdhender/bvh"
	"github.com/mdhender/bvh/parsers"
	"github.com/mdhender/bvh/pipelines/stages"
	"github.com/spf13/afero"
)

const walk = "HIERARCHY\nROOT Hips\n{\nOFFSET 0 0 0\nCHANNELS 1 Yrotation\nEnd Site\n{\nOFFSET 0 1 0\n}\n}\nMOTION\nFrames: 2\nFrame Time: 0.1\n10\n20\n"

type importRecord struct {
	path, sha256, documentID string
	duplicate                bool
	cause                    error
}

// mockStore implements stages.IngestStore for testing.
type mockStore struct {
	documents   map[string]*bvh.Document
	sha256Index map[string]string
	imports     []importRecord
	saveErr     error
	nextID      int
}

func newMockStore() *mockStore {
	return &mockStore{
		documents:   make(map[string]*bvh.Document),
		sha256Index: make(map[string]string),
		nextID:      1,
	}
}

func (m *mockStore) SaveDocument(_ context.Context, _, sha256 string, doc *bvh.Document) (string, bool, error) {
	if m.saveErr != nil {
		return "", false, m.saveErr
	}
	if id, ok := m.sha256Index[sha256]; ok {
		return id, true, nil
	}
	id := fmt.Sprintf("doc-%d", m.nextID)
	m.nextID++
	m.documents[id] = doc
	m.sha256Index[sha256] = id
	return id, false, nil
}

func (m *mockStore) RecordImport(_ context.Context, path, sha256, documentID string, duplicate bool, cause error) (int64, error) {
	m.imports = append(m.imports, importRecord{path: path, sha256: sha256, documentID: documentID, duplicate: duplicate, cause: cause})
	return int64(len(m.imports)), nil
}

func newService(t *testing.T, store stages.IngestStore, files map[string]string, options ...parsers.Option) *stages.IngestService {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	svc := stages.NewIngestService(store, slog.New(slog.NewTextHandler(io.Discard, nil)), options...)
	svc.SetFS(fs)
	return svc
}

func TestIngestService_IngestFile(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := newService(t, store, map[string]string{"/data/walk.bvh": walk})

	result, err := svc.IngestFile(ctx, "/data/walk.bvh")
	if err != nil {
		t.Fatalf("ingest file: %v", err)
	}
	if result.Duplicate {
		t.Error("expected not duplicate on first ingest")
	}
	if result.DocumentID != "doc-1" {
		t.Errorf("expected document id 'doc-1', got %q", result.DocumentID)
	}
	if result.Joints != 2 || result.Frames != 2 {
		t.Errorf("expected 2 joints and 2 frames, got %d and %d", result.Joints, result.Frames)
	}

	doc := store.documents[result.DocumentID]
	if doc == nil {
		t.Fatal("document not found in store")
	}
	if got, _ := doc.Root.Channel(bvh.Yrotation); len(got) != 2 || got[1] != 20 {
		t.Errorf("Yrotation = %v, want [10 20]", got)
	}

	if len(store.imports) != 1 {
		t.Fatalf("expected 1 import record, got %d", len(store.imports))
	}
	if rec := store.imports[0]; rec.cause != nil || rec.documentID != "doc-1" || len(rec.sha256) != 64 {
		t.Errorf("unexpected import record %+v", rec)
	}
}

func TestIngestService_DuplicateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := newService(t, store, map[string]string{
		"/data/walk.bvh":      walk,
		"/data/walk-copy.bvh": walk,
	})

	result1, err := svc.IngestFile(ctx, "/data/walk.bvh")
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	result2, err := svc.IngestFile(ctx, "/data/walk-copy.bvh")
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if !result2.Duplicate {
		t.Error("expected duplicate=true on second ingest")
	}
	if result2.DocumentID != result1.DocumentID {
		t.Error("expected same document ID for duplicate")
	}
	if len(store.documents) != 1 {
		t.Errorf("expected 1 stored document, got %d", len(store.documents))
	}
	if len(store.imports) != 2 || !store.imports[1].duplicate {
		t.Errorf("expected second import recorded as duplicate, got %+v", store.imports)
	}
}

func TestIngestService_ParseErrorIsRecorded(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := newService(t, store, map[string]string{
		"/data/broken.bvh": "HIERARCHY\nROOT Hips\n{\nOFFSET 0 0\n}\n",
	})

	_, err := svc.IngestFile(ctx, "/data/broken.bvh")
	var perr *stages.ErrParse
	if !errors.As(err, &perr) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if !errors.Is(err, bvh.ErrMalformedOffset) {
		t.Errorf("expected MalformedOffset, got %v", err)
	}
	if got, want := stages.ErrorCode(err), bvh.ErrCodeMalformedOffset; got != want {
		t.Errorf("ErrorCode = %q, want %q", got, want)
	}
	if len(store.documents) != 0 {
		t.Error("expected nothing saved for a broken file")
	}
	if len(store.imports) != 1 || store.imports[0].cause == nil || store.imports[0].sha256 == "" {
		t.Errorf("expected failed import with hash, got %+v", store.imports)
	}
}

func TestIngestService_MissingFile(t *testing.T) {
	store := newMockStore()
	svc := newService(t, store, nil)

	_, err := svc.IngestFile(context.Background(), "/data/nope.bvh")
	var rerr *stages.ErrReadFile
	if !errors.As(err, &rerr) {
		t.Fatalf("expected ErrReadFile, got %v", err)
	}
	if got := stages.ErrorCode(err); got != stages.ErrCodeReadFile {
		t.Errorf("ErrorCode = %q, want %q", got, stages.ErrCodeReadFile)
	}
	if len(store.imports) != 1 || store.imports[0].sha256 != "" {
		t.Errorf("expected failed import without hash, got %+v", store.imports)
	}
}

func TestIngestService_IngestPath(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := newService(t, store, map[string]string{
		"/data/a.bvh":     walk,
		"/data/b.bvh":     "HIERARCHY\n",
		"/data/run/c.bvh": walk + "30\n",
		"/data/notes.txt": "not motion capture",
	})

	results, err := svc.IngestPath(ctx, "/data")
	if !errors.Is(err, bvh.ErrMissingRoot) {
		t.Fatalf("expected joined MissingRoot error, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Path != "/data/a.bvh" || results[1].Path != "/data/run/c.bvh" {
		t.Errorf("unexpected result order %q, %q", results[0].Path, results[1].Path)
	}
	if results[1].Frames != 3 {
		t.Errorf("expected 3 frames bound for c.bvh, got %d", results[1].Frames)
	}
	if len(store.imports) != 3 {
		t.Errorf("expected 3 import records, got %d", len(store.imports))
	}
}

func TestIngestService_DatabaseErrorStops(t *testing.T) {
	store := newMockStore()
	store.saveErr = errors.New("disk full")
	svc := newService(t, store, map[string]string{
		"/data/a.bvh": walk,
		"/data/b.bvh": walk,
	})

	results, err := svc.IngestPath(context.Background(), "/data")
	var dberr *stages.ErrDatabase
	if !errors.As(err, &dberr) {
		t.Fatalf("expected ErrDatabase, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if len(store.imports) != 0 {
		t.Errorf("expected no import records after a database error, got %d", len(store.imports))
	}
}

func TestIngestService_ParserOptions(t *testing.T) {
	store := newMockStore()
	svc := newService(t, store,
		map[string]string{"/data/walk.bvh": walk + "30\n"},
		parsers.WithParserOptions(bvh.WithRequireFrameCount(true)),
	)
	if _, err := svc.IngestFile(context.Background(), "/data/walk.bvh"); !errors.Is(err, bvh.ErrFrameCountMismatch) {
		t.Fatalf("expected FrameCountMismatch, got %v", err)
	}
}
