// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mdhender/bvh"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

// DocumentInfo is the summary row for a stored document.
type DocumentInfo struct {
	ID          string
	Name        string
	SHA256      string
	Frames      int
	FrameTime   float64
	BoundFrames int
	Joints      int
	CreatedAt   time.Time
}

// SaveDocument stores the document and returns its id.
//
// Documents are keyed by the hash of their source. If a document with the
// same hash exists, its id is returned with duplicate set and nothing is written.
func (s *SQLiteStore) SaveDocument(ctx context.Context, name, sha256 string, doc *bvh.Document) (id string, duplicate bool, err error) {
	if doc == nil || doc.Root == nil {
		return "", false, fmt.Errorf("save document: missing root")
	}

	existing, err := s.GetDocumentBySHA256(ctx, sha256)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", false, fmt.Errorf("check duplicate: %w", err)
	} else if existing != nil {
		return existing.ID, true, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	id = uuid.New().String()
	const insertDocument = `
		INSERT INTO documents (id, name, sha256, frames, frame_time, bound_frames, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err = tx.ExecContext(ctx, insertDocument,
		id,
		name,
		sha256,
		doc.Frames,
		doc.FrameTime,
		doc.BoundFrames(),
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return "", false, fmt.Errorf("insert document: %w", err)
	}

	w, err := newTreeWriter(ctx, tx, id)
	if err != nil {
		return "", false, err
	}
	defer w.close()
	if err = w.writeJoint(doc.Root, sql.NullInt64{}, 0); err != nil {
		return "", false, err
	}

	if err = tx.Commit(); err != nil {
		return "", false, fmt.Errorf("commit: %w", err)
	}
	return id, false, nil
}

// treeWriter holds the prepared statements used to write one document's tree.
type treeWriter struct {
	ctx        context.Context
	documentID string
	seq        int64
	joints     *sql.Stmt
	channels   *sql.Stmt
	samples    *sql.Stmt
}

func newTreeWriter(ctx context.Context, tx *sql.Tx, documentID string) (*treeWriter, error) {
	w := &treeWriter{ctx: ctx, documentID: documentID}
	var err error
	w.joints, err = tx.PrepareContext(ctx, `
		INSERT INTO joints (document_id, seq, parent_seq, depth, name, has_offset, offset_x, offset_y, offset_z)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare joints: %w", err)
	}
	w.channels, err = tx.PrepareContext(ctx, `
		INSERT INTO channels (document_id, joint_seq, idx, name)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		w.close()
		return nil, fmt.Errorf("prepare channels: %w", err)
	}
	w.samples, err = tx.PrepareContext(ctx, `
		INSERT INTO samples (document_id, joint_seq, channel_idx, frame, value)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.close()
		return nil, fmt.Errorf("prepare samples: %w", err)
	}
	return w, nil
}

func (w *treeWriter) close() {
	for _, stmt := range []*sql.Stmt{w.joints, w.channels, w.samples} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

// writeJoint writes the joint and its subtree in walk order.
func (w *treeWriter) writeJoint(joint *bvh.Joint, parent sql.NullInt64, depth int) error {
	seq := w.seq
	w.seq++

	hasOffset := 0
	if joint.HasOffset {
		hasOffset = 1
	}
	if _, err := w.joints.ExecContext(w.ctx,
		w.documentID, seq, parent, depth, joint.Name, hasOffset,
		joint.Offset.X, joint.Offset.Y, joint.Offset.Z,
	); err != nil {
		return fmt.Errorf("insert joint %q: %w", joint.Name, err)
	}

	for idx, ch := range joint.Channels {
		if _, err := w.channels.ExecContext(w.ctx, w.documentID, seq, idx, ch.String()); err != nil {
			return fmt.Errorf("insert channel %s.%s: %w", joint.Name, ch, err)
		}
		for frame, value := range joint.Series[idx] {
			if _, err := w.samples.ExecContext(w.ctx, w.documentID, seq, idx, frame, value); err != nil {
				return fmt.Errorf("insert sample %s.%s[%d]: %w", joint.Name, ch, frame, err)
			}
		}
	}

	for _, child := range joint.Children {
		if err := w.writeJoint(child, sql.NullInt64{Int64: seq, Valid: true}, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// LoadDocument rebuilds a stored document.
func (s *SQLiteStore) LoadDocument(ctx context.Context, id string) (*bvh.Document, error) {
	info, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	joints, err := s.loadJoints(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(joints) == 0 {
		return nil, fmt.Errorf("document %s: no joints", id)
	}
	if err := s.loadChannels(ctx, id, joints); err != nil {
		return nil, err
	}
	if err := s.loadSamples(ctx, id, joints); err != nil {
		return nil, err
	}

	return bvh.NewDocument(joints[0], info.Frames, info.FrameTime, info.BoundFrames), nil
}

// loadJoints returns the joints indexed by seq, linked into a tree.
func (s *SQLiteStore) loadJoints(ctx context.Context, id string) ([]*bvh.Joint, error) {
	const query = `
		SELECT seq, parent_seq, name, has_offset, offset_x, offset_y, offset_z
		FROM joints
		WHERE document_id = ?
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query joints: %w", err)
	}
	defer rows.Close()

	var joints []*bvh.Joint
	for rows.Next() {
		var seq int64
		var parent sql.NullInt64
		var name string
		var hasOffset int
		var offset r3.Vec
		if err := rows.Scan(&seq, &parent, &name, &hasOffset, &offset.X, &offset.Y, &offset.Z); err != nil {
			return nil, err
		}
		if seq != int64(len(joints)) {
			return nil, fmt.Errorf("document %s: joint seq %d out of order", id, seq)
		}
		joint := bvh.NewJoint(name)
		joint.Offset, joint.HasOffset = offset, hasOffset != 0
		if parent.Valid {
			if parent.Int64 < 0 || parent.Int64 >= seq {
				return nil, fmt.Errorf("document %s: joint %d: bad parent %d", id, seq, parent.Int64)
			}
			p := joints[parent.Int64]
			p.Children = append(p.Children, joint)
		} else if seq != 0 {
			return nil, fmt.Errorf("document %s: joint %d: missing parent", id, seq)
		}
		joints = append(joints, joint)
	}
	return joints, rows.Err()
}

func (s *SQLiteStore) loadChannels(ctx context.Context, id string, joints []*bvh.Joint) error {
	const query = `
		SELECT joint_seq, name
		FROM channels
		WHERE document_id = ?
		ORDER BY joint_seq, idx
	`
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	channels := make(map[int64][]bvh.Channel)
	for rows.Next() {
		var seq int64
		var name string
		if err := rows.Scan(&seq, &name); err != nil {
			return err
		}
		ch, ok := bvh.ParseChannel(name)
		if !ok {
			return fmt.Errorf("document %s: joint %d: unknown channel %q", id, seq, name)
		}
		channels[seq] = append(channels[seq], ch)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for seq, list := range channels {
		if seq < 0 || seq >= int64(len(joints)) {
			return fmt.Errorf("document %s: channel for unknown joint %d", id, seq)
		}
		joints[seq].SetChannels(list)
	}
	return nil
}

func (s *SQLiteStore) loadSamples(ctx context.Context, id string, joints []*bvh.Joint) error {
	const query = `
		SELECT joint_seq, channel_idx, frame, value
		FROM samples
		WHERE document_id = ?
		ORDER BY joint_seq, channel_idx, frame
	`
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seq, idx, frame int64
		var value float64
		if err := rows.Scan(&seq, &idx, &frame, &value); err != nil {
			return err
		}
		if seq < 0 || seq >= int64(len(joints)) || idx < 0 || idx >= int64(len(joints[seq].Series)) {
			return fmt.Errorf("document %s: sample for unknown channel %d.%d", id, seq, idx)
		}
		series := joints[seq].Series[idx]
		if frame != int64(len(series)) {
			return fmt.Errorf("document %s: joint %d channel %d: missing frame %d", id, seq, idx, len(series))
		}
		joints[seq].Series[idx] = append(series, value)
	}
	return rows.Err()
}

// GetDocument returns the summary for a document, or ErrNotFound.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*DocumentInfo, error) {
	return s.getDocument(ctx, "d.id = ?", id)
}

// GetDocumentBySHA256 returns the summary for the document imported from
// content with the given hash, or ErrNotFound.
func (s *SQLiteStore) GetDocumentBySHA256(ctx context.Context, sha256 string) (*DocumentInfo, error) {
	return s.getDocument(ctx, "d.sha256 = ?", sha256)
}

const documentInfoQuery = `
	SELECT d.id, d.name, d.sha256, d.frames, d.frame_time, d.bound_frames, d.created_at,
	       (SELECT COUNT(*) FROM joints j WHERE j.document_id = d.id)
	FROM documents d
`

func (s *SQLiteStore) getDocument(ctx context.Context, where string, arg any) (*DocumentInfo, error) {
	row := s.db.QueryRowContext(ctx, documentInfoQuery+" WHERE "+where, arg)
	info, err := scanDocumentInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}
	return info, nil
}

// ListDocuments returns every stored document, oldest first.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := s.db.QueryContext(ctx, documentInfoQuery+" ORDER BY d.created_at, d.name")
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var list []DocumentInfo
	for rows.Next() {
		info, err := scanDocumentInfo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *info)
	}
	return list, rows.Err()
}

// DeleteDocument removes a document and everything that belongs to it.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocumentInfo(row rowScanner) (*DocumentInfo, error) {
	var info DocumentInfo
	var createdAt string
	if err := row.Scan(&info.ID, &info.Name, &info.SHA256, &info.Frames, &info.FrameTime, &info.BoundFrames, &createdAt, &info.Joints); err != nil {
		return nil, err
	}
	info.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &info, nil
}
