// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package bvh

import (
	"fmt"
	"log/slog"
)

type Option func(p *parser) error

// WithLogger sets the logger used for debug and warning messages.
func WithLogger(logger *slog.Logger) Option {
	return func(p *parser) error {
		if logger == nil {
			return fmt.Errorf("logger: nil")
		}
		p.logger = logger
		return nil
	}
}

// WithRejectExtraValues makes a motion line with more values than the
// skeleton has channels an error. By default the extra values are ignored.
func WithRejectExtraValues(flag bool) Option {
	return func(p *parser) error {
		p.rejectExtraValues = flag
		return nil
	}
}

// WithRequireFrameCount makes it an error for the number of motion lines to
// differ from the "Frames:" header. By default the difference is logged.
func WithRequireFrameCount(flag bool) Option {
	return func(p *parser) error {
		p.requireFrameCount = flag
		return nil
	}
}
