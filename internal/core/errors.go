package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInputMissing is returned when a required input path is empty or the
// file does not exist.
var ErrInputMissing = errors.New("input file missing")

// ErrRunNotFound is returned by RunHistory.Get for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// InputError reports an input file that exists but cannot be read as the
// expected format.
type InputError struct {
	Source Source
	Path   string
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s input %s: %v", e.Source, e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// ColumnError reports required columns absent from a source header.
type ColumnError struct {
	Source  Source
	Columns []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column(s): %s", e.Source, strings.Join(e.Columns, ", "))
}

// Column returns the first missing column.
func (e *ColumnError) Column() string {
	if len(e.Columns) == 0 {
		return ""
	}
	return e.Columns[0]
}

// OutputError reports a failure writing a report artifact.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("write output %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}
