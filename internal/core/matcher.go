package core

// matcher.go classifies every join key and compares the configured fields
// of paired records.
//
// Output order is fixed: keys in sorted order; within a key the positional
// pairs, then the excess primary records, then the excess layer records;
// finally the unkeyed records in input order. The same input therefore
// always produces the same rows.

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/qualitycheck/internal/config"
)

// matchCheckInterval is how many groups are matched between context checks
// and progress callbacks.
const matchCheckInterval = 500

// Matcher turns an Index into report rows.
type Matcher struct {
	norm      *Normalizer
	joinField string
	fields    []string
}

// NewMatcher creates a matcher for the compared fields of m.
func NewMatcher(norm *Normalizer, m config.MatchConfig) *Matcher {
	return &Matcher{
		norm:      norm,
		joinField: m.JoinKeyField,
		fields:    append([]string(nil), m.ComparedFields...),
	}
}

// Match produces one ReportRow per paired, one-sided, excess or unkeyed
// record. progress, when non-nil, receives (groups done, total groups).
// Match returns early only when ctx is done.
func (m *Matcher) Match(ctx context.Context, idx *Index, progress func(done, total int)) ([]ReportRow, error) {
	rows := make([]ReportRow, 0, idx.Records())
	total := len(idx.Keys)

	for i, key := range idx.Keys {
		if i%matchCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if progress != nil {
				progress(i, total)
			}
		}
		rows = m.matchGroup(rows, idx.Groups[key])
	}

	for _, rec := range idx.Unkeyed {
		rows = append(rows, m.unkeyedRow(rec))
	}

	if progress != nil {
		progress(total, total)
	}
	return rows, nil
}

// matchGroup appends the rows of one key.
func (m *Matcher) matchGroup(rows []ReportRow, g *MatchGroup) []ReportRow {
	var dupNote string
	if g.Duplicated() {
		dupNote = fmt.Sprintf(NoteMultipleRecords, len(g.Primary), len(g.Layer))
	}

	switch g.Category() {
	case CategoryPrimaryOnly:
		for _, rec := range g.Primary {
			rows = append(rows, oneSidedRow(g.Key, CategoryPrimaryOnly, rec, NotePrimaryOnly, dupNote))
		}
		return rows

	case CategoryLayerOnly:
		for _, rec := range g.Layer {
			rows = append(rows, oneSidedRow(g.Key, CategoryLayerOnly, rec, NoteLayerOnly, dupNote))
		}
		return rows
	}

	pairs := min(len(g.Primary), len(g.Layer))
	for i := 0; i < pairs; i++ {
		row := m.compare(g.Key, g.Primary[i], g.Layer[i])
		if dupNote != "" {
			row.Notes = append(row.Notes, dupNote)
		}
		row.Notes = appendLoadNotes(row.Notes, g.Primary[i], g.Layer[i])
		rows = append(rows, row)
	}

	for _, rec := range g.Primary[pairs:] {
		rows = append(rows, excessRow(g.Key, rec, dupNote))
	}
	for _, rec := range g.Layer[pairs:] {
		rows = append(rows, excessRow(g.Key, rec, dupNote))
	}
	return rows
}

// compare builds the row of one primary/layer pair.
func (m *Matcher) compare(key string, p, l *Record) ReportRow {
	row := ReportRow{
		Key:         key,
		Category:    CategoryBoth,
		Primary:     p,
		Layer:       l,
		Comparisons: make([]FieldComparison, 0, len(m.fields)),
	}

	var mismatches []string
	for _, f := range m.fields {
		c := FieldComparison{
			Field:   f,
			Primary: p.Get(f),
			Layer:   l.Get(f),
		}
		c.Equal = m.norm.EqualField(f, c.Primary, c.Layer)
		if !c.Equal {
			mismatches = append(mismatches, mismatchNote(c))
		}
		row.Comparisons = append(row.Comparisons, c)
	}

	if len(mismatches) == 0 {
		row.Notes = []string{NotePerfect}
	} else {
		row.Notes = []string{NoteMismatchPrefix + strings.Join(mismatches, ", ")}
	}
	return row
}

func (m *Matcher) unkeyedRow(rec *Record) ReportRow {
	row := ReportRow{
		Category: CategoryUnkeyed,
		Notes:    []string{fmt.Sprintf(NoteMissingKey, m.joinField)},
	}
	if rec.Source == SourcePrimary {
		row.Primary = rec
	} else {
		row.Layer = rec
	}
	row.Notes = appendLoadNotes(row.Notes, rec)
	return row
}

func oneSidedRow(key string, cat Category, rec *Record, note, dupNote string) ReportRow {
	row := ReportRow{Key: key, Category: cat, Notes: []string{note}}
	if rec.Source == SourcePrimary {
		row.Primary = rec
	} else {
		row.Layer = rec
	}
	if dupNote != "" {
		row.Notes = append(row.Notes, dupNote)
	}
	row.Notes = appendLoadNotes(row.Notes, rec)
	return row
}

func excessRow(key string, rec *Record, dupNote string) ReportRow {
	row := ReportRow{
		Key:      key,
		Category: CategoryBoth,
		Excess:   true,
		Notes:    []string{dupNote, NoteExcessRecord},
	}
	if rec.Source == SourcePrimary {
		row.Primary = rec
	} else {
		row.Layer = rec
	}
	row.Notes = appendLoadNotes(row.Notes, rec)
	return row
}

// appendLoadNotes appends the load-time notes of recs, skipping nil records.
func appendLoadNotes(notes []string, recs ...*Record) []string {
	for _, r := range recs {
		if r != nil {
			notes = append(notes, r.Notes...)
		}
	}
	return notes
}
