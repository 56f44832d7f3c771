// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "watch.debounce").
	Field string

	// Message is a human-readable error message.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every field error found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate returns a ValidationError if any field is invalid.
func Validate(cfg *Config) error {
	var errs []FieldError

	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, FieldError{Field: "log.level", Message: "must be one of debug, info, warn, error"})
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, FieldError{Field: "log.format", Message: "must be text or json"})
	}

	if cfg.Parser.AutoEOL && cfg.Parser.StripCR {
		errs = append(errs, FieldError{Field: "parser.strip_cr", Message: "cannot be combined with auto_eol"})
	}

	if strings.TrimSpace(cfg.Store.Path) == "" {
		errs = append(errs, FieldError{Field: "store.path", Message: "is required"})
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, FieldError{Field: "watch.debounce", Message: "must not be negative"})
	}
	for _, ext := range cfg.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, FieldError{Field: "watch.extensions", Message: fmt.Sprintf("%q must start with a dot", ext)})
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
