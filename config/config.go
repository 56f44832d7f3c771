// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package config loads settings for the bvh command from a YAML file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mdhender/bvh"
	"github.com/mdhender/bvh/parsers"
)

// Config is the top level configuration.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Parser ParserConfig `yaml:"parser"`
	Store  StoreConfig  `yaml:"store"`
	Watch  WatchConfig  `yaml:"watch"`
}

// LogConfig controls the structured logger handed to the parser and store.
type LogConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error")
	Level string `yaml:"level"`

	// Format is the output format ("text", "json")
	Format string `yaml:"format"`

	// AddSource includes file and line number in logs
	AddSource bool `yaml:"add_source"`
}

// ParserConfig controls how input files are read and how strict the parser is.
type ParserConfig struct {
	AutoEOL           bool `yaml:"auto_eol"`
	StripCR           bool `yaml:"strip_cr"`
	RejectExtraValues bool `yaml:"reject_extra_values"`
	RequireFrameCount bool `yaml:"require_frame_count"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	// Path is the database file. ":memory:" uses an in-memory database.
	Path string `yaml:"path"`
}

// WatchConfig controls the file watcher.
type WatchConfig struct {
	Path       string        `yaml:"path"`
	Debounce   time.Duration `yaml:"debounce"`
	Extensions []string      `yaml:"extensions"`
	SkipHidden bool          `yaml:"skip_hidden"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Parser: ParserConfig{
			AutoEOL: true,
		},
		Store: StoreConfig{
			Path: "bvh.db",
		},
		Watch: WatchConfig{
			Path:       ".",
			Debounce:   250 * time.Millisecond,
			Extensions: []string{".bvh"},
			SkipHidden: true,
		},
	}
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// NewLogger returns a logger that writes to w.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: c.AddSource}
	switch strings.ToLower(c.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", c.Format)
}

// Options converts the parser settings into options for the parsers package.
func (c ParserConfig) Options(logger *slog.Logger) []parsers.Option {
	return []parsers.Option{
		parsers.WithAutoEOL(c.AutoEOL),
		parsers.WithStripCR(c.StripCR),
		parsers.WithLogger(logger),
		parsers.WithParserOptions(
			bvh.WithRejectExtraValues(c.RejectExtraValues),
			bvh.WithRequireFrameCount(c.RequireFrameCount),
		),
	}
}
