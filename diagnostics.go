// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package bvh

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Diagnostic represents a parser error or warning with the line
// in the original source where it occurred.
type Diagnostic struct {
	Severity slog.Level // Error, Warning, Info
	Message  string     // "malformed offset: expected 3 values, found 2"
	Line     int        // 1-based; zero if not tied to a line
	Notes    []string   // optional additional help messages
}

// NewDiagnostic converts a parse error into a Diagnostic.
// Errors that did not come from the parser are reported without a line.
func NewDiagnostic(err error) Diagnostic {
	var e *Error
	if !errors.As(err, &e) {
		return Diagnostic{Severity: slog.LevelError, Message: err.Error()}
	}
	diag := Diagnostic{
		Severity: slog.LevelError,
		Message:  e.Kind.String(),
		Line:     e.Line,
	}
	if e.Expected != "" {
		diag.Message += ": expected " + e.Expected
		if e.Found != "" {
			diag.Message += ", found " + e.Found
		}
	} else if e.Found != "" {
		diag.Message += ": found " + e.Found
	}
	switch e.Kind {
	case FrameValueMismatch:
		diag.Notes = append(diag.Notes, "each motion line needs one value per channel, for every joint in the hierarchy")
	case UnterminatedBlock:
		diag.Notes = append(diag.Notes, "check that every { has a matching }")
	case SectionOrder:
		diag.Notes = append(diag.Notes, "a file has one HIERARCHY section followed by one MOTION section")
	}
	if e.Err != nil {
		diag.Notes = append(diag.Notes, e.Err.Error())
	}
	return diag
}

// PrintDiagnostic writes the diagnostic in "file:line: severity: message"
// form, followed by the source line and any notes.
func PrintDiagnostic(w io.Writer, diag Diagnostic, filename string, src []byte) {
	if diag.Line > 0 {
		_, _ = fmt.Fprintf(w, "%s:%d: %s: %s\n", filename, diag.Line, strings.ToLower(diag.Severity.String()), diag.Message)
		if line, ok := findLine(src, diag.Line); ok {
			_, _ = fmt.Fprintf(w, "    %s\n", line)
		}
	} else {
		_, _ = fmt.Fprintf(w, "%s: %s: %s\n", filename, strings.ToLower(diag.Severity.String()), diag.Message)
	}
	for _, note := range diag.Notes {
		_, _ = fmt.Fprintf(w, "    note: %s\n", note)
	}
}

// findLine returns the 1-based line n of src, without its line ending.
func findLine(src []byte, n int) (string, bool) {
	lines := Lines(src)
	if n < 1 || n > len(lines) {
		return "", false
	}
	return lines[n-1].Text, true
}
