// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package bvh

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fatal parse error.
type ErrorKind int

const (
	UnterminatedBlock ErrorKind = iota + 1
	MissingRoot
	MalformedOffset
	MalformedChannels
	MalformedJoint
	MalformedHeader
	MalformedFrame
	FrameValueMismatch
	FrameCountMismatch
	SectionOrder
	UnrecognizedToken
)

var errorKindNames = map[ErrorKind]string{
	UnterminatedBlock:  "unterminated joint block",
	MissingRoot:        "missing root",
	MalformedOffset:    "malformed offset",
	MalformedChannels:  "malformed channels",
	MalformedJoint:     "malformed joint",
	MalformedHeader:    "malformed motion header",
	MalformedFrame:     "malformed frame",
	FrameValueMismatch: "frame value count mismatch",
	FrameCountMismatch: "frame count mismatch",
	SectionOrder:       "section order",
	UnrecognizedToken:  "unrecognized token",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinel errors for use with errors.Is.
var (
	ErrUnterminatedBlock  = &Error{Kind: UnterminatedBlock}
	ErrMissingRoot        = &Error{Kind: MissingRoot}
	ErrMalformedOffset    = &Error{Kind: MalformedOffset}
	ErrMalformedChannels  = &Error{Kind: MalformedChannels}
	ErrMalformedJoint     = &Error{Kind: MalformedJoint}
	ErrMalformedHeader    = &Error{Kind: MalformedHeader}
	ErrMalformedFrame     = &Error{Kind: MalformedFrame}
	ErrFrameValueMismatch = &Error{Kind: FrameValueMismatch}
	ErrFrameCountMismatch = &Error{Kind: FrameCountMismatch}
	ErrSectionOrder       = &Error{Kind: SectionOrder}
	ErrUnrecognizedToken  = &Error{Kind: UnrecognizedToken}
)

// Error is returned for every fatal problem found in the input.
// Line is 1-based; zero means the error is not tied to a line
// (for example, running out of input).
type Error struct {
	Kind     ErrorKind
	Line     int
	Expected string
	Found    string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	switch {
	case e.Expected != "" && e.Found != "":
		msg = fmt.Sprintf("%s: expected %s, found %s", msg, e.Expected, e.Found)
	case e.Expected != "":
		msg = fmt.Sprintf("%s: expected %s", msg, e.Expected)
	case e.Found != "":
		msg = fmt.Sprintf("%s: found %s", msg, e.Found)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so callers can test
// errors.Is(err, bvh.ErrMissingRoot).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Error code constants for database storage.
const (
	ErrCodeUnterminatedBlock  = "UNTERMINATED_BLOCK"
	ErrCodeMissingRoot        = "MISSING_ROOT"
	ErrCodeMalformedOffset    = "MALFORMED_OFFSET"
	ErrCodeMalformedChannels  = "MALFORMED_CHANNELS"
	ErrCodeMalformedJoint     = "MALFORMED_JOINT"
	ErrCodeMalformedHeader    = "MALFORMED_HEADER"
	ErrCodeMalformedFrame     = "MALFORMED_FRAME"
	ErrCodeFrameValueMismatch = "FRAME_VALUE_MISMATCH"
	ErrCodeFrameCountMismatch = "FRAME_COUNT_MISMATCH"
	ErrCodeSectionOrder       = "SECTION_ORDER"
	ErrCodeUnrecognizedToken  = "UNRECOGNIZED_TOKEN"
	ErrCodeUnknown            = "UNKNOWN"
)

// ErrorCode returns the error code string for a given error.
func ErrorCode(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ErrCodeUnknown
	}
	switch e.Kind {
	case UnterminatedBlock:
		return ErrCodeUnterminatedBlock
	case MissingRoot:
		return ErrCodeMissingRoot
	case MalformedOffset:
		return ErrCodeMalformedOffset
	case MalformedChannels:
		return ErrCodeMalformedChannels
	case MalformedJoint:
		return ErrCodeMalformedJoint
	case MalformedHeader:
		return ErrCodeMalformedHeader
	case MalformedFrame:
		return ErrCodeMalformedFrame
	case FrameValueMismatch:
		return ErrCodeFrameValueMismatch
	case FrameCountMismatch:
		return ErrCodeFrameCountMismatch
	case SectionOrder:
		return ErrCodeSectionOrder
	case UnrecognizedToken:
		return ErrCodeUnrecognizedToken
	}
	return ErrCodeUnknown
}

func errorAt(kind ErrorKind, line Line, expected, found string) *Error {
	return &Error{Kind: kind, Line: line.No, Expected: expected, Found: found}
}
