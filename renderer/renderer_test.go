// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package renderer_test

import (
	"bytes"
	"testing"

	"github.com/mdhender/bvh"
	"github.com/mdhender/bvh/renderer"
)

const input = `HIERARCHY
ROOT Hips
{
	OFFSET 0 0 0
	CHANNELS 3 Xposition Yposition Zposition
	End Site
	{
		OFFSET 0 -1.5 2.25
	}
}
MOTION
Frames: 2
Frame Time: 0.0333
0 0 0
1 2 3
`

func parse(t *testing.T) *bvh.Document {
	t.Helper()
	doc, err := bvh.ParseBytes([]byte(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestRender_Hierarchy(t *testing.T) {
	r, err := renderer.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, parse(t)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "Frames: 2, Frame Time: 0.0333, Hierarchy:\n" +
		"Hips                       0.000    0.000    0.000    Xposition Yposition Zposition\n" +
		" End Site                  0.000   -1.500    2.250    \n"
	if got := buf.String(); got != want {
		t.Fatalf("Render =\n%q\nwant\n%q", got, want)
	}
}

func TestRender_Frames(t *testing.T) {
	r, err := renderer.New(renderer.WithFrames(true), renderer.WithExcludeJoints("End Site"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, parse(t)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "Frames: 2, Frame Time: 0.0333, Hierarchy:\n" +
		"Hips                       0.000    0.000    0.000    Xposition Yposition Zposition\n" +
		"     1: 0.0 0.0 0.0\n" +
		"     2: 1.0 2.0 3.0\n"
	if got := buf.String(); got != want {
		t.Fatalf("Render =\n%q\nwant\n%q", got, want)
	}
}

func TestRender_FramesSkipExcludedSubtree(t *testing.T) {
	doc, err := bvh.ParseBytes([]byte(`HIERARCHY
ROOT Hips
{
	CHANNELS 1 Xposition
	JOINT Spine
	{
		CHANNELS 1 Zrotation
		JOINT Neck
		{
			CHANNELS 1 Yrotation
		}
	}
	JOINT LeftUpLeg
	{
		CHANNELS 1 Xrotation
	}
}
MOTION
Frames: 1
Frame Time: 0.1
1 99 98 4
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r, err := renderer.New(renderer.WithFrames(true), renderer.WithExcludeJoints("Spine"), renderer.WithNameWidth(10))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, doc); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "Frames: 1, Frame Time: 0.1, Hierarchy:\n" +
		"Hips              Xposition\n" +
		" LeftUpLeg        Xrotation\n" +
		"     1: 1.0 4.0\n"
	if got := buf.String(); got != want {
		t.Fatalf("Render =\n%q\nwant\n%q", got, want)
	}
}

func TestNew_RejectsNegativeWidth(t *testing.T) {
	if _, err := renderer.New(renderer.WithNameWidth(-1)); err == nil {
		t.Fatalf("New: want error for negative width")
	}
}
