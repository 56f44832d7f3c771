// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package bvh

import (
	"strings"
)

// Line is a single trimmed line of input along with the keyword that starts it.
type Line struct {
	No     int      // 1-based line number in the source
	Text   string   // trimmed text of the line
	Kind   Kind     // keyword that starts the line, or UNKNOWN
	Fields []string // whitespace separated fields of Text
}

// Is reports whether line.Kind matches the provided kind.
func (line Line) Is(kind Kind) bool {
	return line.Kind == kind
}

// IsOneOf reports whether line.Kind matches any of the provided kinds.
func (line Line) IsOneOf(kinds ...Kind) bool {
	for _, kind := range kinds {
		if line.Kind == kind {
			return true
		}
	}
	return false
}

// Args returns the fields that follow the keyword.
// Keywords that span two fields ("End Site", "Frame Time:") are skipped as a unit.
func (line Line) Args() []string {
	switch line.Kind {
	case UNKNOWN, BLANK:
		return line.Fields
	case ENDSITE, FRAMETIME:
		return line.Fields[2:]
	}
	return line.Fields[1:]
}

// classify returns the keyword that starts a trimmed line.
//
// Braces match as a prefix so "{" and "}" work even when something follows
// them on the line. Every other keyword must be a complete field, which keeps
// a joint named, say, "JOINTS" from being read as a JOINT line.
func classify(fields []string) Kind {
	if len(fields) == 0 {
		return BLANK
	}
	switch first := fields[0]; {
	case strings.HasPrefix(first, "{"):
		return LBRACE
	case strings.HasPrefix(first, "}"):
		return RBRACE
	case first == "HIERARCHY":
		return HIERARCHY
	case first == "ROOT":
		return ROOT
	case first == "OFFSET":
		return OFFSET
	case first == "CHANNELS":
		return CHANNELS
	case first == "JOINT":
		return JOINT
	case first == "MOTION":
		return MOTION
	case first == "Frames:":
		return FRAMES
	case first == "End" && len(fields) > 1 && fields[1] == "Site":
		return ENDSITE
	case first == "Frame" && len(fields) > 1 && fields[1] == "Time:":
		return FRAMETIME
	}
	return UNKNOWN
}

// NewLine trims text and classifies it. no is the 1-based line number.
func NewLine(no int, text string) Line {
	text = strings.TrimSpace(text)
	fields := strings.Fields(text)
	return Line{
		No:     no,
		Text:   text,
		Kind:   classify(fields),
		Fields: fields,
	}
}

// Lines splits input on LF into classified lines.
// A CR before the LF is removed when the line is trimmed.
func Lines(input []byte) []Line {
	text := strings.TrimSuffix(string(input), "\n")
	if text == "" {
		return nil
	}
	return newLines(strings.Split(text, "\n"))
}

func newLines(text []string) []Line {
	lines := make([]Line, len(text))
	for n, s := range text {
		lines[n] = NewLine(n+1, s)
	}
	return lines
}
