// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package renderer

import "fmt"

type Option func(r *Renderer) error

// WithIndent sets the string written once per level of depth before a joint name.
func WithIndent(indent string) Option {
	return func(r *Renderer) error {
		r.indent = indent
		return nil
	}
}

// WithNameWidth sets the width of the (indented) name column.
func WithNameWidth(width int) Option {
	return func(r *Renderer) error {
		if width < 0 {
			return fmt.Errorf("name width: must not be negative")
		}
		r.nameWidth = width
		return nil
	}
}

// WithFrames adds one line per bound frame after the hierarchy.
func WithFrames(flag bool) Option {
	return func(r *Renderer) error {
		r.frames = flag
		return nil
	}
}

// WithExcludeJoints adds the joints to the exclude set.
// Excluded joints and their descendants are not rendered.
func WithExcludeJoints(joints ...string) Option {
	return func(r *Renderer) error {
		for _, joint := range joints {
			r.excludeJoints[joint] = true
		}
		return nil
	}
}
