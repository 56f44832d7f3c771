// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package bvh

import (
	"log/slog"
	"time"
)

// Document is a parsed BVH file.
type Document struct {
	Root      *Joint  `json:"root"`
	Frames    int     `json:"frames"`     // declared on the "Frames:" line
	FrameTime float64 `json:"frame-time"` // seconds per frame

	bound int // frames actually bound to the tree
}

// BoundFrames is the number of motion lines bound to the tree.
// For a well-formed file it equals Frames.
func (doc *Document) BoundFrames() int {
	return doc.bound
}

// Duration is the length of the bound motion.
func (doc *Document) Duration() time.Duration {
	return time.Duration(float64(doc.bound) * doc.FrameTime * float64(time.Second))
}

// ChannelCount is the number of values in each frame.
func (doc *Document) ChannelCount() int {
	if doc.Root == nil {
		return 0
	}
	return doc.Root.TotalChannels()
}

// Joints returns every joint in the order frame values are bound to them.
func (doc *Document) Joints() []*Joint {
	var joints []*Joint
	if doc.Root == nil {
		return joints
	}
	doc.Root.Walk(func(joint *Joint, _ int) bool {
		joints = append(joints, joint)
		return true
	})
	return joints
}

// Find returns the first joint, in walk order, with the given name.
func (doc *Document) Find(name string) (*Joint, bool) {
	var found *Joint
	if doc.Root != nil {
		doc.Root.Walk(func(joint *Joint, _ int) bool {
			if joint.Name == name {
				found = joint
				return false
			}
			return true
		})
	}
	return found, found != nil
}

// NewDocument returns a document for a tree that was built or loaded
// outside the parser. boundFrames must match the length of the tree's series.
func NewDocument(root *Joint, frames int, frameTime float64, boundFrames int) *Document {
	return &Document{Root: root, Frames: frames, FrameTime: frameTime, bound: boundFrames}
}

type parser struct {
	lines  []Line
	logger *slog.Logger

	rejectExtraValues bool
	requireFrameCount bool
}

// Parse parses the lines of a BVH file. The lines do not need to be trimmed.
//
// Parsing stops at the first error; no partial Document is returned.
func Parse(lines []string, options ...Option) (*Document, error) {
	return parseLines(newLines(lines), options...)
}

// ParseBytes splits input into lines and parses them.
func ParseBytes(input []byte, options ...Option) (*Document, error) {
	return parseLines(Lines(input), options...)
}

func parseLines(lines []Line, options ...Option) (*Document, error) {
	p := &parser{
		lines:  lines,
		logger: slog.Default(),
	}
	for _, option := range options {
		if err := option(p); err != nil {
			return nil, err
		}
	}
	return p.parseDocument()
}

// parseDocument scans for the HIERARCHY and MOTION sections.
// Lines outside of those sections are ignored.
func (p *parser) parseDocument() (*Document, error) {
	doc := &Document{}
	for pos := 0; pos < len(p.lines); {
		line := p.lines[pos]
		pos++
		switch line.Kind {
		case HIERARCHY:
			if doc.Root != nil {
				return nil, errorAt(SectionOrder, line, "MOTION", "second HIERARCHY")
			}
			root, next, err := p.parseHierarchy(pos)
			if err != nil {
				return nil, err
			}
			doc.Root, pos = root, next
		case MOTION:
			if doc.Root == nil {
				return nil, errorAt(SectionOrder, line, "HIERARCHY", "MOTION")
			}
			next, err := p.parseMotion(doc, pos)
			if err != nil {
				return nil, err
			}
			pos = next
		}
	}
	if doc.Root == nil {
		return nil, &Error{Kind: MissingRoot, Expected: "HIERARCHY", Found: "end of input"}
	}
	return doc, nil
}

func (p *parser) lineNo(pos int) int {
	if 0 <= pos && pos < len(p.lines) {
		return p.lines[pos].No
	}
	return 0
}
