// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDebouncer_Coalesces(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var a, b atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger("a.bvh", func() { a.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	d.Trigger("b.bvh", func() { b.Add(1) })
	if got := d.Pending(); got != 2 {
		t.Errorf("Pending = %d, want 2", got)
	}

	time.Sleep(200 * time.Millisecond)
	if got := a.Load(); got != 1 {
		t.Errorf("a fired %d times, want 1", got)
	}
	if got := b.Load(); got != 1 {
		t.Errorf("b fired %d times, want 1", got)
	}
	if got := d.Pending(); got != 0 {
		t.Errorf("Pending = %d, want 0", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var fired atomic.Bool
	d.Trigger("a.bvh", func() { fired.Store(true) })
	d.Stop()
	d.Trigger("b.bvh", func() { fired.Store(true) })

	time.Sleep(100 * time.Millisecond)
	if fired.Load() {
		t.Error("callback ran after Stop")
	}
}

func TestWatcher_ShouldProcess(t *testing.T) {
	w := &Watcher{config: Config{Extensions: []string{".bvh"}, SkipHidden: true}}
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: "/m/walk.bvh", Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: "/m/walk.bvh", Op: fsnotify.Create}, true},
		{"upper case extension", fsnotify.Event{Name: "/m/WALK.BVH", Op: fsnotify.Write}, true},
		{"chmod", fsnotify.Event{Name: "/m/walk.bvh", Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: "/m/walk.bvh", Op: fsnotify.Remove}, false},
		{"other extension", fsnotify.Event{Name: "/m/walk.txt", Op: fsnotify.Write}, false},
		{"hidden", fsnotify.Event{Name: "/m/.walk.bvh", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.shouldProcess(tt.event); got != tt.want {
				t.Errorf("shouldProcess(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Error("New: want error for empty path")
	}
	if _, err := New(Config{Path: ".", Debounce: -time.Second}, nil); err == nil {
		t.Error("New: want error for negative debounce")
	}
}

func TestWatcher_ReportsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Path: dir, Debounce: 20 * time.Millisecond, SkipHidden: true}, quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var mu sync.Mutex
	var changed []string
	reported := make(chan struct{}, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(path string) {
			mu.Lock()
			changed = append(changed, path)
			mu.Unlock()
			reported <- struct{}{}
		})
	}()

	// give Watch time to register the directory
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "walk.bvh")
	if err := os.WriteFile(path, []byte("HIERARCHY\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-reported:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	w.Stop()
	if err := <-done; err != nil {
		t.Fatalf("Watch: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(changed) != 1 || changed[0] != path {
		t.Errorf("changed = %v, want [%s]", changed, path)
	}
}

func TestWatcher_RunOnce(t *testing.T) {
	w, err := New(Config{Path: t.TempDir()}, quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Watch(ctx, func(string) {}); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := w.Watch(ctx, func(string) {}); err == nil {
		t.Error("second Watch: want error")
	}
	w.Stop()
}
