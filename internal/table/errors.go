package table

// errors.go defines the error taxonomy for read/write operations:
//
//   - ErrNotFound: the source path is missing
//   - StreamError: an I/O failure surfaced by the source or destination
//   - FormatError: the record formatter rejected a value
//
// None of these are retried internally; a failed read or write returns
// the originating error and no partial table.

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a missing source path.
var ErrNotFound = errors.New("source file not found")

// StreamError wraps an I/O failure from the source or destination stream.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string { return fmt.Sprintf("stream error: %v", e.Err) }

func (e *StreamError) Unwrap() error { return e.Err }

// FormatError wraps a record-formatter failure during a write.
type FormatError struct {
	Sheet string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error in sheet %q: %v", e.Sheet, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
