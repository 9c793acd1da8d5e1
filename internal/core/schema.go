package core

// schema.go derives the expected input columns from the match configuration
// and validates headers against them.
//
// Both sources must carry the join key and every compared field; a run
// without them cannot produce a meaningful report and fails before any row
// is read. Extra carried fields (disk, shipment, box ... on the Complot
// side) are optional and read as null when absent.

import (
	"github.com/JonMunkholm/qualitycheck/internal/config"
)

// SourceFields returns the expected columns of source, required ones first.
func SourceFields(source Source, m config.MatchConfig) []FieldSpec {
	extras := m.PrimaryExtraFields
	if source == SourceLayer {
		extras = m.LayerExtraFields
	}

	specs := make([]FieldSpec, 0, 1+len(m.ComparedFields)+len(extras))
	specs = append(specs, FieldSpec{Name: m.JoinKeyField, Required: true})
	for _, f := range m.ComparedFields {
		specs = append(specs, FieldSpec{Name: f, Required: true})
	}
	for _, f := range extras {
		specs = append(specs, FieldSpec{Name: f})
	}
	return dedupeSpecs(specs)
}

// ValidateHeaders checks that every required column exists in header.
// Returns a mapping from column name to index, or a *ColumnError listing
// all missing columns.
func ValidateHeaders(source Source, header []string, specs []FieldSpec) (HeaderIndex, error) {
	idx := MakeHeaderIndex(header)
	var missing []string

	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := idx[HeaderKey(spec.Name)]; !ok {
			missing = append(missing, spec.Name)
		}
	}

	if len(missing) > 0 {
		return nil, &ColumnError{Source: source, Columns: missing}
	}
	return idx, nil
}

// dedupeSpecs drops repeated names, keeping the first (required) entry.
func dedupeSpecs(specs []FieldSpec) []FieldSpec {
	seen := make(map[string]bool, len(specs))
	out := specs[:0]
	for _, s := range specs {
		key := HeaderKey(s.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
