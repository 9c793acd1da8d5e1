package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "missing input maps correctly",
			err:         fmt.Errorf("complot: %w", ErrInputMissing),
			wantCode:    "FILE001",
			wantMessage: "A required input file is missing",
		},
		{
			name:        "file too large maps correctly",
			err:         &InputError{Source: SourcePrimary, Path: "a.csv", Err: errors.New("file too large: 60000000 bytes")},
			wantCode:    "FILE002",
			wantMessage: "File exceeds the maximum size limit",
		},
		{
			name:        "non-zip workbook maps correctly",
			err:         &InputError{Source: SourceLayer, Path: "b.xlsx", Err: errors.New("zip: not a valid zip file")},
			wantCode:    "FILE003",
			wantMessage: "The file is not a valid Excel workbook",
		},
		{
			name:        "column error maps correctly",
			err:         &ColumnError{Source: SourceLayer, Columns: []string{"גוש"}},
			wantCode:    "VAL004",
			wantMessage: "A required column is missing from an input file",
		},
		{
			name:        "output directory wins over write output",
			err:         &OutputError{Path: "/nope/out.xlsx", Err: errors.New("output directory /nope does not exist")},
			wantCode:    "OUT002",
			wantMessage: "The output folder does not exist or is not writable",
		},
		{
			name:        "output error maps correctly",
			err:         &OutputError{Path: "out.xlsx", Err: errors.New("rename: access is denied")},
			wantCode:    "OUT001",
			wantMessage: "The report could not be written",
		},
		{
			name:        "busy maps correctly",
			err:         ErrTooManyRuns,
			wantCode:    "RUN001",
			wantMessage: "Too many checks are running",
		},
		{
			name:        "cancelled maps correctly",
			err:         fmt.Errorf("load layer: %w", context.Canceled),
			wantCode:    "RUN002",
			wantMessage: "The check was cancelled",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("NO HEADER ROW in sheet"),
			wantCode:    "FILE004",
			wantMessage: "The file has no header row",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrTooManyRuns)

	expected := "Too many checks are running (Code: RUN001). Please wait a moment and try again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrInputMissing,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := &ColumnError{Source: SourcePrimary, Columns: []string{"קישור לקובץ"}}
		userErr := NewUserError(techErr)

		if userErr.Error() != "A required column is missing from an input file" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		var colErr *ColumnError
		if !errors.As(userErr, &colErr) {
			t.Fatal("Unwrap() should expose the ColumnError")
		}
		if colErr.Column() != "קישור לקובץ" {
			t.Errorf("Column() = %q", colErr.Column())
		}
	})
}
