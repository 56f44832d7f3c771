// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package renderer writes a human readable dump of a parsed BVH document.
package renderer

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mdhender/bvh"
)

type Renderer struct {
	indent        string
	nameWidth     int
	frames        bool
	excludeJoints map[string]bool
}

func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		indent:        " ",
		nameWidth:     20,
		excludeJoints: make(map[string]bool),
	}
	for _, option := range options {
		err := option(r)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Render writes a header line followed by one line per joint:
//
//	Frames: 2, Frame Time: 0.0333, Hierarchy:
//	Hips                       0.000    0.000    0.000    Xposition Yposition Zposition
//	 Spine                     0.000    5.200    0.000    Zrotation Xrotation Yrotation
func (r *Renderer) Render(w io.Writer, doc *bvh.Document) error {
	bw := bufio.NewWriter(w)
	_, _ = fmt.Fprintf(bw, "Frames: %d, Frame Time: %s, Hierarchy:\n", doc.Frames, formatFloat(doc.FrameTime))
	if doc.Root != nil {
		r.renderJoint(bw, doc.Root, 0)
	}
	if r.frames {
		r.renderFrames(bw, doc)
	}
	return bw.Flush()
}

func (r *Renderer) renderJoint(w io.Writer, joint *bvh.Joint, depth int) {
	if r.excludeJoints[joint.Name] {
		return
	}
	name := strings.Repeat(r.indent, depth) + joint.Name

	var offset string
	if joint.HasOffset {
		offset = fmt.Sprintf("%8.3f %8.3f %8.3f", joint.Offset.X, joint.Offset.Y, joint.Offset.Z)
	}

	channels := make([]string, len(joint.Channels))
	for i, ch := range joint.Channels {
		channels[i] = ch.String()
	}

	_, _ = fmt.Fprintf(w, "%-*s    %s    %s\n", r.nameWidth, name, offset, strings.Join(channels, " "))
	for _, child := range joint.Children {
		r.renderJoint(w, child, depth+1)
	}
}

// renderFrames writes each frame's values in binding order.
// Values for excluded joints and their descendants are left out.
func (r *Renderer) renderFrames(w io.Writer, doc *bvh.Document) {
	var joints []*bvh.Joint
	if doc.Root != nil {
		joints = r.collectJoints(joints, doc.Root)
	}
	for n := 0; n < doc.BoundFrames(); n++ {
		var values []string
		for _, joint := range joints {
			for _, v := range joint.Frame(n) {
				values = append(values, formatFloat(v))
			}
		}
		_, _ = fmt.Fprintf(w, "%6d: %s\n", n+1, strings.Join(values, " "))
	}
}

// collectJoints appends the joint and its descendants in walk order,
// pruning excluded subtrees the same way renderJoint does.
func (r *Renderer) collectJoints(joints []*bvh.Joint, joint *bvh.Joint) []*bvh.Joint {
	if r.excludeJoints[joint.Name] {
		return joints
	}
	joints = append(joints, joint)
	for _, child := range joint.Children {
		joints = r.collectJoints(joints, child)
	}
	return joints
}

// formatFloat writes the shortest representation of f, keeping a
// trailing ".0" on whole numbers so they still read as floats.
func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
