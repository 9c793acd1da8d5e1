package core

// report.go lays out the output table and computes the run summary.
//
// The default layout mirrors the workbook the survey team fills by hand:
// Complot columns, then layer columns, then one TRUE/FALSE comparison column
// per compared field, then the notes. A template workbook may reorder the
// columns; produced columns the template lacks are appended so no value is
// ever dropped.

import (
	"github.com/JonMunkholm/qualitycheck/internal/config"
)

// keyCompareSuffix is appended to the join-key comparison header.
const keyCompareSuffix = "\n(הערך החד ערכי\nהתוצאה חייבת\nלהיות TRUE)"

// ColumnKind says where a report column takes its value from.
type ColumnKind int

const (
	ColumnPrimary    ColumnKind = iota // a Complot field
	ColumnLayer                        // a layer field
	ColumnKeyCompare                   // TRUE for paired rows
	ColumnCompare                      // equality flag of a compared field
	ColumnNotes                        // the row notes
	ColumnEmpty                        // a template column the report does not fill
)

// Column is one column of the output table.
type Column struct {
	Header string
	Kind   ColumnKind
	Field  string
}

// Layout is the ordered column set of the output table.
type Layout struct {
	Columns []Column
}

// DefaultColumns returns the produced columns in their default order.
func DefaultColumns(m config.MatchConfig, rc config.ReportConfig) []Column {
	cols := make([]Column, 0, 4+2*len(m.ComparedFields)+len(m.PrimaryExtraFields)+len(m.LayerExtraFields)+len(m.ComparedFields))

	cols = append(cols, Column{Header: rc.PrimaryPrefix + m.JoinKeyField, Kind: ColumnPrimary, Field: m.JoinKeyField})
	for _, f := range m.PrimaryExtraFields {
		cols = append(cols, Column{Header: rc.PrimaryPrefix + f, Kind: ColumnPrimary, Field: f})
	}
	for _, f := range m.ComparedFields {
		cols = append(cols, Column{Header: rc.PrimaryPrefix + f, Kind: ColumnPrimary, Field: f})
	}

	cols = append(cols, Column{Header: rc.LayerPrefix + m.JoinKeyField, Kind: ColumnLayer, Field: m.JoinKeyField})
	for _, f := range m.LayerExtraFields {
		cols = append(cols, Column{Header: rc.LayerPrefix + f, Kind: ColumnLayer, Field: f})
	}
	for _, f := range m.ComparedFields {
		cols = append(cols, Column{Header: rc.LayerPrefix + f + rc.LayerComparedSuffix, Kind: ColumnLayer, Field: f})
	}

	cols = append(cols, Column{Header: rc.ComparePrefix + m.JoinKeyField + keyCompareSuffix, Kind: ColumnKeyCompare, Field: m.JoinKeyField})
	for _, f := range m.ComparedFields {
		cols = append(cols, Column{Header: rc.ComparePrefix + f, Kind: ColumnCompare, Field: f})
	}

	cols = append(cols, Column{Header: rc.NotesColumn, Kind: ColumnNotes})
	return cols
}

// NewLayout orders the produced columns. With a template header, template
// columns come first in template order (unknown ones stay empty) and the
// remaining produced columns follow. Headers match trimmed, case-insensitively
// and with whitespace collapsed.
func NewLayout(m config.MatchConfig, rc config.ReportConfig, template []string) Layout {
	produced := DefaultColumns(m, rc)
	if len(template) == 0 {
		return Layout{Columns: produced}
	}

	byKey := make(map[string]int, len(produced))
	for i, c := range produced {
		if _, dup := byKey[HeaderKey(c.Header)]; !dup {
			byKey[HeaderKey(c.Header)] = i
		}
	}

	used := make([]bool, len(produced))
	cols := make([]Column, 0, len(template)+len(produced))
	for _, h := range template {
		if i, ok := byKey[HeaderKey(h)]; ok && !used[i] {
			used[i] = true
			c := produced[i]
			c.Header = h
			cols = append(cols, c)
			continue
		}
		cols = append(cols, Column{Header: h, Kind: ColumnEmpty})
	}
	for i, c := range produced {
		if !used[i] {
			cols = append(cols, c)
		}
	}
	return Layout{Columns: cols}
}

// Header returns the column headers.
func (l Layout) Header() []string {
	out := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		out[i] = c.Header
	}
	return out
}

// Cells returns the cell values of row: strings for field values ("" when
// null or absent), booleans for comparison flags of paired rows.
func (l Layout) Cells(row ReportRow) []interface{} {
	out := make([]interface{}, len(l.Columns))
	for i, c := range l.Columns {
		out[i] = cellValue(c, row)
	}
	return out
}

func cellValue(c Column, row ReportRow) interface{} {
	switch c.Kind {
	case ColumnPrimary:
		return row.Primary.Get(c.Field).String()
	case ColumnLayer:
		return row.Layer.Get(c.Field).String()
	case ColumnKeyCompare:
		if row.Paired() {
			return true
		}
	case ColumnCompare:
		if row.Paired() {
			for _, cmp := range row.Comparisons {
				if cmp.Field == c.Field {
					return cmp.Equal
				}
			}
		}
	case ColumnNotes:
		return row.NoteText()
	}
	return ""
}

// Report is the complete output of a run.
type Report struct {
	Layout  Layout
	Rows    []ReportRow
	Summary Summary
}

// NewReport lays out rows and computes the summary.
func NewReport(layout Layout, idx *Index, rows []ReportRow, fields []string) *Report {
	return &Report{
		Layout:  layout,
		Rows:    rows,
		Summary: Summarize(idx, rows, fields),
	}
}

// Header returns the output header row.
func (r *Report) Header() []string {
	return r.Layout.Header()
}

// Cells returns the cell values of output row i.
func (r *Report) Cells(i int) []interface{} {
	return r.Layout.Cells(r.Rows[i])
}

// Summarize computes the run statistics. A both-present key is a perfect
// match when every one of its record pairs agrees on every compared field;
// excess records of a duplicated key do not change that.
func Summarize(idx *Index, rows []ReportRow, fields []string) Summary {
	s := Summary{
		TotalKeys:  len(idx.Keys),
		Unkeyed:    len(idx.Unkeyed),
		OutputRows: len(rows),
	}

	for _, key := range idx.Keys {
		g := idx.Groups[key]
		s.PrimaryRecords += len(g.Primary)
		s.LayerRecords += len(g.Layer)
		if g.Duplicated() {
			s.DuplicateKeys++
		}
		switch g.Category() {
		case CategoryBoth:
			s.FoundInBoth++
		case CategoryPrimaryOnly:
			s.PrimaryOnly++
		case CategoryLayerOnly:
			s.LayerOnly++
		}
	}
	for _, rec := range idx.Unkeyed {
		if rec.Source == SourcePrimary {
			s.PrimaryRecords++
		} else {
			s.LayerRecords++
		}
	}

	mismatches := make(map[string]int, len(fields))
	partialKeys := make(map[string]bool)
	for _, row := range rows {
		if row.Excess {
			s.ExcessRecords++
			continue
		}
		if !row.Paired() {
			continue
		}
		for _, c := range row.Comparisons {
			if !c.Equal {
				mismatches[c.Field]++
				partialKeys[row.Key] = true
			}
		}
	}

	s.Partial = len(partialKeys)
	s.Perfect = s.FoundInBoth - s.Partial

	s.FieldMismatches = make([]FieldMismatch, 0, len(fields))
	for _, f := range fields {
		s.FieldMismatches = append(s.FieldMismatches, FieldMismatch{Field: f, Mismatches: mismatches[f]})
	}
	return s
}
