// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package parsers reads BVH files from a file system and hands their lines
// to the bvh parser.
package parsers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mdhender/bvh"
	"github.com/spf13/afero"
)

// Input is the contents of a single BVH file.
type Input struct {
	Path   string // path the file was read from
	Name   string // base name of the file
	Data   []byte // contents, after line ending conversion
	SHA256 string // hex encoded hash of the original contents

	cfg *Config
}

// ReadInput reads the file at path. The file is closed before ReadInput returns.
func ReadInput(fs afero.Fs, path string, options ...Option) (*Input, error) {
	cfg := &Config{logger: slog.Default()}
	for _, option := range options {
		if err := option(cfg); err != nil {
			return nil, err
		}
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	hash := sha256.Sum256(data)

	if cfg.autoEOL {
		cfg.logger.Debug("parsers: auto-eol: replacing CR+LF and CR with LF", "path", path)
		data = bytes.ReplaceAll(data, []byte{'\r', '\n'}, []byte{'\n'})
		data = bytes.ReplaceAll(data, []byte{'\r'}, []byte{'\n'})
	} else if cfg.stripCR {
		cfg.logger.Debug("parsers: strip-cr: replacing CR+LF with LF", "path", path)
		data = bytes.ReplaceAll(data, []byte{'\r', '\n'}, []byte{'\n'})
	}

	return &Input{
		Path:   path,
		Name:   filepath.Base(path),
		Data:   data,
		SHA256: hex.EncodeToString(hash[:]),
		cfg:    cfg,
	}, nil
}

// Parse parses the input with the parser options given to ReadInput.
func (in *Input) Parse() (*bvh.Document, error) {
	started := time.Now()
	options := append([]bvh.Option{bvh.WithLogger(in.cfg.logger)}, in.cfg.options...)
	doc, err := bvh.ParseBytes(in.Data, options...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Name, err)
	}
	in.cfg.logger.Debug("parsers: parsed",
		"path", in.Path,
		"joints", len(doc.Joints()),
		"frames", doc.BoundFrames(),
		"elapsed", time.Since(started),
	)
	return doc, nil
}

// ParseFile reads and parses the BVH file at path.
func ParseFile(fs afero.Fs, path string, options ...Option) (*bvh.Document, error) {
	in, err := ReadInput(fs, path, options...)
	if err != nil {
		return nil, err
	}
	return in.Parse()
}

// IsBVH reports whether the path has a ".bvh" extension, ignoring case.
func IsBVH(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".bvh")
}

// CollectInputs returns the paths of the BVH files at or below root, sorted.
// If root is a file, it is returned as the only input.
func CollectInputs(afs afero.Fs, root string) ([]string, error) {
	info, err := afs.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var inputs []string
	err = afero.Walk(afs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsBVH(path) {
			inputs = append(inputs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(inputs)
	return inputs, nil
}
