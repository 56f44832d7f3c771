// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path over the defaults, applies BVH_*
// environment variable overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv returns the defaults with environment variable overrides applied.
func FromEnv() (*Config, error) {
	cfg := Default()
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format BVH_SECTION_FIELD.
// Values that do not parse are ignored.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("BVH_LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("BVH_LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
	envBool("BVH_LOG_ADD_SOURCE", &cfg.Log.AddSource)

	envBool("BVH_PARSER_AUTO_EOL", &cfg.Parser.AutoEOL)
	envBool("BVH_PARSER_STRIP_CR", &cfg.Parser.StripCR)
	envBool("BVH_PARSER_REJECT_EXTRA_VALUES", &cfg.Parser.RejectExtraValues)
	envBool("BVH_PARSER_REQUIRE_FRAME_COUNT", &cfg.Parser.RequireFrameCount)

	if val := os.Getenv("BVH_STORE_PATH"); val != "" {
		cfg.Store.Path = val
	}

	if val := os.Getenv("BVH_WATCH_PATH"); val != "" {
		cfg.Watch.Path = val
	}
	if val := os.Getenv("BVH_WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.Debounce = d
		}
	}
	if val := os.Getenv("BVH_WATCH_EXTENSIONS"); val != "" {
		cfg.Watch.Extensions = strings.Split(val, ",")
	}
}

func envBool(name string, field *bool) {
	if val := os.Getenv(name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*field = b
		}
	}
}
