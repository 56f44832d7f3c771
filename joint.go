// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package bvh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Joint is a node in the skeleton.
//
// Channels and Series are parallel: Series[i] holds one value per bound
// frame for Channels[i]. All series of a joint always have the same length.
//
// A Joint owns its Children; there are no parent pointers.
type Joint struct {
	Name      string      `json:"name"`
	Offset    r3.Vec      `json:"offset"`     // translation from the parent joint
	HasOffset bool        `json:"has-offset"` // false until an OFFSET line is parsed
	Channels  []Channel   `json:"channels,omitempty"`
	Series    [][]float64 `json:"series,omitempty"`
	Children  []*Joint    `json:"children,omitempty"`
}

// NewJoint returns a joint with no offset, channels, or children.
func NewJoint(name string) *Joint {
	return &Joint{Name: name}
}

// IsEndSite reports whether the joint is an End Site marker.
func (j *Joint) IsEndSite() bool {
	return j.Name == EndSiteName
}

// ChannelCount is the number of values the joint consumes from each frame.
func (j *Joint) ChannelCount() int {
	return len(j.Channels)
}

// SetChannels replaces the joint's channels and resets its series.
func (j *Joint) SetChannels(channels []Channel) {
	j.Channels = channels
	j.Series = make([][]float64, len(channels))
	for i := range j.Series {
		j.Series[i] = []float64{}
	}
}

// Channel returns the series for the channel, if the joint has it.
func (j *Joint) Channel(c Channel) ([]float64, bool) {
	for i, ch := range j.Channels {
		if ch == c {
			return j.Series[i], true
		}
	}
	return nil, false
}

// Frames is the number of frames bound to this joint.
func (j *Joint) Frames() int {
	if len(j.Series) == 0 {
		return 0
	}
	return len(j.Series[0])
}

// Frame returns the joint's channel values for frame n, in channel order.
// It returns nil if n is out of range.
func (j *Joint) Frame(n int) []float64 {
	if n < 0 || n >= j.Frames() {
		return nil
	}
	values := make([]float64, len(j.Series))
	for i, series := range j.Series {
		values[i] = series[n]
	}
	return values
}

// Walk visits the joint and its descendants depth-first, parent before
// children, children in declaration order. This is the order in which
// frame values are bound. Walk stops early if fn returns false.
func (j *Joint) Walk(fn func(joint *Joint, depth int) bool) {
	j.walk(fn, 0)
}

func (j *Joint) walk(fn func(joint *Joint, depth int) bool, depth int) bool {
	if !fn(j, depth) {
		return false
	}
	for _, child := range j.Children {
		if !child.walk(fn, depth+1) {
			return false
		}
	}
	return true
}

// TotalChannels is the number of values a frame must supply for this subtree.
func (j *Joint) TotalChannels() int {
	total := 0
	j.Walk(func(joint *Joint, _ int) bool {
		total += joint.ChannelCount()
		return true
	})
	return total
}

// RestPose returns the position of every joint in the subtree, relative to
// this joint, by summing offsets along the path from the subtree root.
// Positions are returned in walk order.
func (j *Joint) RestPose() []r3.Vec {
	var positions []r3.Vec
	var visit func(joint *Joint, origin r3.Vec)
	visit = func(joint *Joint, origin r3.Vec) {
		pos := r3.Add(origin, joint.Offset)
		positions = append(positions, pos)
		for _, child := range joint.Children {
			visit(child, pos)
		}
	}
	visit(j, r3.Vec{})
	return positions
}
