// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package stages

import (
	"fmt"

	"github.com/mdhender/bvh"
)

// ErrReadFile is returned when an input file cannot be read.
type ErrReadFile struct {
	Path string
	Err  error
}

func (e *ErrReadFile) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ErrReadFile) Unwrap() error {
	return e.Err
}

// ErrDatabase is returned when database operations fail.
type ErrDatabase struct {
	Op  string
	Err error
}

func (e *ErrDatabase) Error() string {
	return fmt.Sprintf("database %s: %v", e.Op, e.Err)
}

func (e *ErrDatabase) Unwrap() error {
	return e.Err
}

// ErrParse is returned when an input file is not valid BVH.
type ErrParse struct {
	Path string
	Err  error
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ErrParse) Unwrap() error {
	return e.Err
}

// Error code constants for database storage.
const (
	ErrCodeReadFile = "READ_FILE"
	ErrCodeDatabase = "DATABASE"
)

// ErrorCode returns the error code string for a given error.
// Parse errors report the code of the underlying BVH error.
func ErrorCode(err error) string {
	switch e := err.(type) {
	case *ErrReadFile:
		return ErrCodeReadFile
	case *ErrDatabase:
		return ErrCodeDatabase
	case *ErrParse:
		return bvh.ErrorCode(e.Err)
	default:
		return bvh.ErrorCode(err)
	}
}
