// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package parsers

import (
	"log/slog"

	"github.com/mdhender/bvh"
)

type Config struct {
	autoEOL bool
	stripCR bool
	logger  *slog.Logger
	options []bvh.Option
}

type Option func(c *Config) error

// WithAutoEOL converts CR+LF and lone CR line endings to LF.
func WithAutoEOL(flag bool) Option {
	return func(c *Config) error {
		c.autoEOL = flag
		return nil
	}
}

// WithStripCR converts CR+LF line endings to LF. It is ignored if AutoEOL is set.
func WithStripCR(flag bool) Option {
	return func(c *Config) error {
		c.stripCR = flag
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithParserOptions passes options through to the BVH parser.
func WithParserOptions(options ...bvh.Option) Option {
	return func(c *Config) error {
		c.options = append(c.options, options...)
		return nil
	}
}
