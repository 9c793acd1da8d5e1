package core

// normalize.go centralizes cell cleaning, null handling, join-key
// derivation and field equality.
//
// Exports from Complot and from the GIS layer disagree on trivia: trailing
// spaces, doubled spaces, letter case, Excel formula wrappers and a zoo of
// null markers ("<Null>", "nan", "NULL", empty). Every comparison in the
// pipeline goes through one Normalizer so those differences never surface
// as discrepancies.

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/JonMunkholm/qualitycheck/internal/config"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Normalizer applies the match configuration to cell values.
// A Normalizer is not safe for concurrent use; each run builds its own.
type Normalizer struct {
	nullTokens    map[string]bool
	numeric       map[string]bool
	caseSensitive bool
	fold          cases.Caser
}

// NewNormalizer builds a Normalizer from the match configuration.
func NewNormalizer(m config.MatchConfig) *Normalizer {
	n := &Normalizer{
		nullTokens:    make(map[string]bool, len(m.NullTokens)),
		numeric:       make(map[string]bool, len(m.NumericFields)),
		caseSensitive: m.CaseSensitive,
		fold:          cases.Fold(),
	}
	for _, tok := range m.NullTokens {
		if tok = collapseSpace(tok); tok != "" {
			n.nullTokens[n.fold.String(tok)] = true
		}
	}
	for _, f := range m.NumericFields {
		n.numeric[HeaderKey(f)] = true
	}
	return n
}

// Clean cleans a raw cell and maps whitespace-only cells and null tokens
// to null. The returned text keeps its original case and inner spacing.
func (n *Normalizer) Clean(raw string) Value {
	s := CleanCell(raw)
	if s == "" || n.IsNullToken(s) {
		return Null()
	}
	return Text(s)
}

// IsNullToken reports whether s is a configured null token.
// Tokens match case-insensitively and ignoring surrounding whitespace.
func (n *Normalizer) IsNullToken(s string) bool {
	if len(n.nullTokens) == 0 {
		return false
	}
	return n.nullTokens[n.fold.String(collapseSpace(s))]
}

// Key derives the join key from a join-field value: trimmed, inner
// whitespace collapsed and case-folded. ok is false for null values.
func (n *Normalizer) Key(v Value) (key string, ok bool) {
	v = n.renull(v)
	if !v.Valid {
		return "", false
	}
	return n.fold.String(collapseSpace(v.S)), true
}

// Equal compares two values of an unnamed field. Both null compares equal,
// one null compares unequal, otherwise the comparable forms must match.
func (n *Normalizer) Equal(a, b Value) bool {
	return n.EqualField("", a, b)
}

// EqualField compares two values of field. Fields configured as numeric
// compare by numeric value when both sides parse as numbers.
func (n *Normalizer) EqualField(field string, a, b Value) bool {
	a, b = n.renull(a), n.renull(b)

	if !a.Valid || !b.Valid {
		return !a.Valid && !b.Valid
	}

	if field != "" && n.numeric[HeaderKey(field)] {
		fa, okA := parseNumber(a.S)
		fb, okB := parseNumber(b.S)
		if okA && okB {
			return fa == fb
		}
	}

	return n.comparable(a.S) == n.comparable(b.S)
}

// comparable returns the form of s used for equality.
func (n *Normalizer) comparable(s string) string {
	s = collapseSpace(s)
	if !n.caseSensitive {
		s = n.fold.String(s)
	}
	return s
}

// renull re-applies null detection so values built outside Clean compare
// the same way as loaded ones.
func (n *Normalizer) renull(v Value) Value {
	if !v.Valid {
		return v
	}
	return n.Clean(v.S)
}

// CleanCell removes common spreadsheet artifacts from a cell value:
//   - Trims whitespace
//   - Removes the Excel text-formula wrapper (="...")
//   - Removes one pair of surrounding double quotes
//
// Single quotes and inner double quotes are kept: Hebrew abbreviations use
// them (רח' הרצל, ת"א).
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if len(s) >= 2 && strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"") {
		s = s[1 : len(s)-1]
	}

	return strings.TrimSpace(s)
}

// HeaderKey is the lookup form of a column name: cleaned, whitespace
// collapsed (so "גוש\n" and "גוש " match) and lowercased.
func HeaderKey(s string) string {
	return strings.ToLower(collapseSpace(CleanCell(s)))
}

// MakeHeaderIndex creates a HeaderIndex from a header row.
// When a name repeats, the first column wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := HeaderKey(h)
		if key == "" {
			continue
		}
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// collapseSpace trims s and replaces inner whitespace runs with one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseNumber parses s as a decimal number, ignoring thousands separators.
func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
