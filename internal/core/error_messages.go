// Package core provides the reconciliation logic for Complot / Layer quality checks.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # File Errors (FILE001-FILE099)
//
// Errors related to the input files:
//
//	FILE001 - Missing input: A required input file was not provided or does not exist
//	          Action: Select both the Complot CSV and the layer Excel file
//	          Patterns: "input file missing"
//
//	FILE002 - File too large: File exceeds the maximum size limit
//	          Action: Export a smaller area or raise QC_MAX_FILE_SIZE
//	          Patterns: "file too large"
//
//	FILE003 - Not a workbook: The layer or template file is not a valid Excel workbook
//	          Action: Save the file as .xlsx and try again
//	          Patterns: "not a valid zip file", "unsupported workbook"
//
//	FILE004 - No header: The file has no header row
//	          Action: Make sure the first row holds the column names
//	          Patterns: "no header row"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL004 - Missing column: A required column is missing from an input file
//	         Action: Check the join key and compared columns in both files
//	         Patterns: "missing required column"
//
// # Output Errors (OUT001-OUT099)
//
//	OUT002 - Output directory: The output folder does not exist or is not writable
//	         Action: Choose another output location
//	         Patterns: "output directory"
//
//	OUT001 - Write failed: The report could not be written
//	         Action: Close the report if it is open in Excel and try again
//	         Patterns: "write output"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: Too many checks are running
//	         Action: Please wait a moment and try again
//	         Patterns: "too many concurrent runs"
//
//	RUN002 - Cancelled: The check was cancelled
//	         Action: Start a new check when ready
//	         Patterns: "context canceled"
//
//	RUN003 - Timeout: The check took too long
//	         Action: Try smaller inputs or raise RUN_TIMEOUT
//	         Patterns: "context deadline exceeded"
//
//	RUN004 - Unknown run: The requested run does not exist
//	         Action: Pick a run from the recent runs list
//	         Patterns: "run not found"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE004)
	// =========================================================================
	{
		pattern: "input file missing",
		msg: UserMessage{
			Message: "A required input file is missing",
			Action:  "Select both the Complot CSV and the layer Excel file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Export a smaller area or raise QC_MAX_FILE_SIZE",
			Code:    "FILE002",
		},
	},
	{
		pattern: "not a valid zip file",
		msg: UserMessage{
			Message: "The file is not a valid Excel workbook",
			Action:  "Save the file as .xlsx and try again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "unsupported workbook",
		msg: UserMessage{
			Message: "The file is not a valid Excel workbook",
			Action:  "Save the file as .xlsx and try again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no header row",
		msg: UserMessage{
			Message: "The file has no header row",
			Action:  "Make sure the first row holds the column names",
			Code:    "FILE004",
		},
	},

	// =========================================================================
	// Validation Errors (VAL004)
	// =========================================================================
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A required column is missing from an input file",
			Action:  "Check the join key and compared columns in both files",
			Code:    "VAL004",
		},
	},

	// =========================================================================
	// Output Errors (OUT001-OUT002)
	// =========================================================================
	{
		pattern: "output directory",
		msg: UserMessage{
			Message: "The output folder does not exist or is not writable",
			Action:  "Choose another output location",
			Code:    "OUT002",
		},
	},
	{
		pattern: "write output",
		msg: UserMessage{
			Message: "The report could not be written",
			Action:  "Close the report if it is open in Excel and try again",
			Code:    "OUT001",
		},
	},

	// =========================================================================
	// Run Errors (RUN001-RUN004)
	// =========================================================================
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "Too many checks are running",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The check was cancelled",
			Action:  "Start a new check when ready",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The check took too long",
			Action:  "Try smaller inputs or raise RUN_TIMEOUT",
			Code:    "RUN003",
		},
	},
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "The requested run does not exist",
			Action:  "Pick a run from the recent runs list",
			Code:    "RUN004",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := &ColumnError{Source: SourceLayer, Columns: []string{"גוש"}}
//	msg := MapError(err)
//	// msg.Code == "VAL004"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
