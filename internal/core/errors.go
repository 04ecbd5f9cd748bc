package core

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig is returned when credentials or configuration are unavailable.
	ErrConfig = errors.New("configuration unavailable")

	// ErrEmptySource is returned when the source bucket holds no objects.
	ErrEmptySource = errors.New("no objects in source bucket")

	// ErrParse is returned when an extract is not well-formed tabular text.
	ErrParse = errors.New("malformed tabular content")

	// ErrPersistence is returned when the warehouse rejects a statement or commit.
	ErrPersistence = errors.New("persistence failed")
)

// ParseError describes where an extract stopped being parseable.
// It matches ErrParse with errors.Is.
type ParseError struct {
	Line   int    // 1-indexed line, 0 when unknown
	Column string // offending column, if any
	Reason string
	Err    error // underlying cause, if any
}

func (e *ParseError) Error() string {
	msg := e.Reason
	if e.Column != "" {
		msg = fmt.Sprintf("column %q: %s", e.Column, msg)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%v: %s", ErrParse, msg)
}

// Unwrap exposes both ErrParse and the underlying cause.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}
