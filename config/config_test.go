// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bvh.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
parser:
  auto_eol: false
  strip_cr: true
  require_frame_count: true
store:
  path: ./mocap.db
watch:
  path: ./incoming
  debounce: 2s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v, want debug/json", cfg.Log)
	}
	if cfg.Parser.AutoEOL || !cfg.Parser.StripCR || !cfg.Parser.RequireFrameCount {
		t.Errorf("parser = %+v", cfg.Parser)
	}
	if got, want := cfg.Store.Path, "./mocap.db"; got != want {
		t.Errorf("store.path = %q, want %q", got, want)
	}
	if got, want := cfg.Watch.Debounce, 2*time.Second; got != want {
		t.Errorf("watch.debounce = %v, want %v", got, want)
	}
	// not in the file, so the default survives
	if got := cfg.Watch.Extensions; len(got) != 1 || got[0] != ".bvh" {
		t.Errorf("watch.extensions = %v, want [.bvh]", got)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "store:\n  path: file.db\n")
	t.Setenv("BVH_STORE_PATH", "env.db")
	t.Setenv("BVH_WATCH_DEBOUNCE", "5ms")
	t.Setenv("BVH_PARSER_REJECT_EXTRA_VALUES", "true")
	t.Setenv("BVH_LOG_ADD_SOURCE", "not-a-bool")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if got, want := cfg.Store.Path, "env.db"; got != want {
		t.Errorf("store.path = %q, want %q", got, want)
	}
	if got, want := cfg.Watch.Debounce, 5*time.Millisecond; got != want {
		t.Errorf("watch.debounce = %v, want %v", got, want)
	}
	if !cfg.Parser.RejectExtraValues {
		t.Errorf("parser.reject_extra_values = false, want true")
	}
	if cfg.Log.AddSource {
		t.Errorf("log.add_source = true, want false for an unparseable value")
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, `
log:
  level: loud
watch:
  debounce: -1s
  extensions: [bvh]
`)
	_, err := Load(path)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if got, want := len(verr.Errors), 3; got != want {
		t.Fatalf("len(Errors) = %d, want %d: %v", got, want, verr)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "log: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("Load: want error for bad yaml")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("Load: want error for missing file")
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("Validate(Default()) = %v", err)
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", slog.Int("frames", 2))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"frames":2`) {
		t.Errorf("output = %s, want json warn record", out)
	}

	if _, err := (LogConfig{Format: "xml"}).NewLogger(&buf); err == nil {
		t.Errorf("NewLogger: want error for unknown format")
	}
}
