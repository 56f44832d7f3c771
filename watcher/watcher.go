// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package watcher reports BVH files that are created or changed in a directory tree.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config controls what the watcher reports.
type Config struct {
	Path       string        // file or directory to watch
	Debounce   time.Duration // quiet period before a changed file is reported
	Extensions []string      // extensions to report, with the leading dot
	SkipHidden bool          // ignore dot files and dot directories
}

// Watcher watches a file or directory tree and reports changed files
// once they have been quiet for the debounce interval.
//
// A Watcher can only be run once.
type Watcher struct {
	watcher  *fsnotify.Watcher
	config   Config
	logger   *slog.Logger
	debounce *Debouncer

	mu      sync.Mutex
	running bool
	stop    sync.Once
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New returns a watcher for the configured path.
func New(config Config, logger *slog.Logger) (*Watcher, error) {
	if config.Path == "" {
		return nil, errors.New("watch path is required")
	}
	if config.Debounce < 0 {
		return nil, fmt.Errorf("debounce %v: must not be negative", config.Debounce)
	}
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".bvh"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		watcher:  w,
		config:   config,
		logger:   logger,
		debounce: NewDebouncer(config.Debounce),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until the context is cancelled or Stop is called, calling
// onChange with the path of each file that is written or created.
// onChange is called from a timer goroutine.
func (w *Watcher) Watch(ctx context.Context, onChange func(path string)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.debounce.Stop()
		_ = w.watcher.Close()
		close(w.doneCh)
	}()

	if err := w.addPath(w.config.Path); err != nil {
		return fmt.Errorf("watch %s: %w", w.config.Path, err)
	}
	w.logger.Info("watch: started", "path", w.config.Path, "debounce", w.config.Debounce)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch: stopped", "reason", ctx.Err())
			return nil
		case <-w.stopCh:
			w.logger.Info("watch: stopped")
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if event.Has(fsnotify.Create) && w.isNewDirectory(event.Name) {
				if err := w.addDirectory(event.Name); err != nil {
					w.logger.Error("watch: add directory", "path", event.Name, "error", err)
				}
				continue
			}
			if !w.shouldProcess(event) {
				continue
			}
			w.logger.Debug("watch: event", "path", event.Name, "op", event.Op.String())
			path := event.Name
			w.debounce.Trigger(path, func() { onChange(path) })
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watch: error", "error", err)
		}
	}
}

// Stop stops a running watcher and waits for Watch to return.
// It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stop.Do(func() { close(w.stopCh) })

	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if running {
		<-w.doneCh
		return
	}
	w.debounce.Stop()
	_ = w.watcher.Close()
}

func (w *Watcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	} else if info.IsDir() {
		return w.addDirectory(path)
	}
	return w.watcher.Add(path)
}

// addDirectory watches dir and every directory below it.
func (w *Watcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		} else if !d.IsDir() {
			return nil
		}
		if path != dir && w.config.SkipHidden && isHidden(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch directory %s: %w", path, err)
		}
		w.logger.Debug("watch: directory", "path", path)
		return nil
	})
}

func (w *Watcher) isNewDirectory(path string) bool {
	if w.config.SkipHidden && isHidden(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// shouldProcess reports whether the event is a write or create of a file
// with a watched extension.
func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	if w.config.SkipHidden && isHidden(event.Name) {
		return false
	}
	ext := filepath.Ext(event.Name)
	for _, want := range w.config.Extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
