// Package core provides the reconciliation logic for Complot / Layer quality checks.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"strings"
	"time"
)

// Source identifies which input a record came from.
type Source int

const (
	SourcePrimary Source = iota // Complot CSV export
	SourceLayer                 // GIS layer spreadsheet
	SourceTemplate              // output template workbook (header only)
)

func (s Source) String() string {
	switch s {
	case SourcePrimary:
		return "complot"
	case SourceLayer:
		return "layer"
	case SourceTemplate:
		return "template"
	default:
		return "unknown"
	}
}

// Value is a cleaned cell value. Valid is false for null cells
// (empty, whitespace-only or a configured null token).
type Value struct {
	S     string
	Valid bool
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Text returns a non-null Value holding s.
func Text(s string) Value { return Value{S: s, Valid: true} }

// String returns the cell text, or "" for null.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return v.S
}

// Record is one data row from either source.
type Record struct {
	Source Source
	Line   int              // 1-based row in the input file; the header is row 1
	Fields map[string]Value // keyed by configured field name
	Key    string           // normalized join key, set by BuildIndex
	HasKey bool
	Notes  []string // load-time notes (malformed row, unreadable cell)
}

// Get returns the value of field, or null when the record does not carry it.
func (r *Record) Get(field string) Value {
	if r == nil {
		return Null()
	}
	return r.Fields[field]
}

// Table is a loaded input: its header and records in input order.
type Table struct {
	Source   Source
	Name     string   // file base name
	Header   []string // raw header row
	Records  []*Record
	Skipped  int    // fully empty rows
	Encoding string // detected text encoding (delimited source only)
}

// FieldSpec describes one expected input column.
type FieldSpec struct {
	Name     string // Column header name (matched trimmed, case-insensitively)
	Required bool   // Column must exist in the header
}

// HeaderIndex maps normalized column names to their position in a row.
type HeaderIndex map[string]int

// Category classifies a join key by where it was found.
type Category string

const (
	CategoryBoth        Category = "both"
	CategoryPrimaryOnly Category = "primary_only"
	CategoryLayerOnly   Category = "layer_only"
	CategoryUnkeyed     Category = "unkeyed"
)

// MatchGroup holds the records of both sources that share one join key,
// each side in input order.
type MatchGroup struct {
	Key     string
	Primary []*Record
	Layer   []*Record
}

// Category returns the group's classification.
func (g *MatchGroup) Category() Category {
	switch {
	case len(g.Primary) > 0 && len(g.Layer) > 0:
		return CategoryBoth
	case len(g.Primary) > 0:
		return CategoryPrimaryOnly
	default:
		return CategoryLayerOnly
	}
}

// Duplicated reports whether either side holds more than one record.
func (g *MatchGroup) Duplicated() bool {
	return len(g.Primary) > 1 || len(g.Layer) > 1
}

// FieldComparison is the outcome of comparing one field of a record pair.
type FieldComparison struct {
	Field   string
	Equal   bool
	Primary Value
	Layer   Value
}

// ReportRow is one row of the output table.
type ReportRow struct {
	Key         string
	Category    Category
	Primary     *Record // nil when the row has no primary record
	Layer       *Record // nil when the row has no layer record
	Comparisons []FieldComparison
	Excess      bool // record left over after positional pairing of a duplicated key
	Notes       []string
}

// Paired reports whether the row holds one record from each source.
func (r ReportRow) Paired() bool {
	return r.Primary != nil && r.Layer != nil
}

// AllEqual reports whether every compared field of a paired row matched.
func (r ReportRow) AllEqual() bool {
	if !r.Paired() {
		return false
	}
	for _, c := range r.Comparisons {
		if !c.Equal {
			return false
		}
	}
	return true
}

// NoteText joins the row notes into one cell value.
func (r ReportRow) NoteText() string {
	return strings.Join(r.Notes, "; ")
}

// FieldMismatch counts the paired rows that disagree on one field.
type FieldMismatch struct {
	Field      string `json:"field"`
	Mismatches int    `json:"mismatches"`
}

// Summary aggregates a run's results.
//
// FoundInBoth == Perfect + Partial and
// TotalKeys == FoundInBoth + PrimaryOnly + LayerOnly.
type Summary struct {
	TotalKeys   int `json:"total_keys"`
	FoundInBoth int `json:"found_in_both"`
	Perfect     int `json:"perfect_matches"`
	Partial     int `json:"partial_matches"`
	PrimaryOnly int `json:"primary_only"`
	LayerOnly   int `json:"layer_only"`

	PrimaryRecords  int             `json:"primary_records"`
	LayerRecords    int             `json:"layer_records"`
	Unkeyed         int             `json:"unkeyed_records"`
	SkippedRows     int             `json:"skipped_rows"`
	DuplicateKeys   int             `json:"duplicate_keys"`
	ExcessRecords   int             `json:"excess_records"`
	OutputRows      int             `json:"output_rows"`
	FieldMismatches []FieldMismatch `json:"field_mismatches"`
}

// RunRequest names the files for one reconciliation run.
type RunRequest struct {
	RunID        string // optional; generated when empty
	PrimaryPath  string // Complot CSV
	LayerPath    string // layer .xlsx
	TemplatePath string // optional .xlsx whose first row orders the output columns
	OutputPath   string // report .xlsx; the text summary goes next to it
}

// RunResult is returned by a successful run.
type RunResult struct {
	RunID           string        `json:"run_id"`
	Summary         Summary       `json:"summary"`
	ReportPath      string        `json:"report_path"`
	SummaryPath     string        `json:"summary_path"`
	PrimaryEncoding string        `json:"primary_encoding"`
	Meta            SummaryMeta   `json:"meta"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
}

// RunPhase indicates the current stage of a run.
type RunPhase string

const (
	PhaseStarting RunPhase = "starting"
	PhaseLoading  RunPhase = "loading"
	PhaseIndexing RunPhase = "indexing"
	PhaseMatching RunPhase = "matching"
	PhaseWriting  RunPhase = "writing"
	PhaseComplete RunPhase = "complete"
	PhaseFailed   RunPhase = "failed"
)

// RunProgress is emitted at each phase change and periodically while matching.
type RunProgress struct {
	RunID   string
	Phase   RunPhase
	Current int // groups matched so far (matching phase only)
	Total   int
	Error   string // Non-empty if Phase is PhaseFailed
}

// Percent returns matching progress as a percentage (0-100).
func (p RunProgress) Percent() int {
	switch p.Phase {
	case PhaseComplete:
		return 100
	case PhaseMatching:
		if p.Total > 0 {
			return (p.Current * 100) / p.Total
		}
	}
	return 0
}

// ProgressCallback receives run progress. It is called on the run's goroutine.
type ProgressCallback func(RunProgress)
