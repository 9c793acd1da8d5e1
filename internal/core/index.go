package core

import (
	"sort"
)

// Index groups the records of both sources by join key.
type Index struct {
	Groups  map[string]*MatchGroup
	Keys    []string  // every non-null key of either source, sorted
	Unkeyed []*Record // records with a null join key, primary first, in input order
}

// BuildIndex derives each record's join key from joinField and groups the
// records of both sources by it. Records keep their input order within a
// group. Records with a null key are collected in Unkeyed.
func BuildIndex(norm *Normalizer, joinField string, primary, layer []*Record) *Index {
	idx := &Index{Groups: make(map[string]*MatchGroup)}

	add := func(rec *Record) {
		key, ok := norm.Key(rec.Get(joinField))
		rec.Key, rec.HasKey = key, ok
		if !ok {
			idx.Unkeyed = append(idx.Unkeyed, rec)
			return
		}

		g, exists := idx.Groups[key]
		if !exists {
			g = &MatchGroup{Key: key}
			idx.Groups[key] = g
			idx.Keys = append(idx.Keys, key)
		}
		if rec.Source == SourcePrimary {
			g.Primary = append(g.Primary, rec)
		} else {
			g.Layer = append(g.Layer, rec)
		}
	}

	for _, rec := range primary {
		add(rec)
	}
	for _, rec := range layer {
		add(rec)
	}

	sort.Strings(idx.Keys)
	return idx
}

// Group returns the group for key, or nil.
func (idx *Index) Group(key string) *MatchGroup {
	return idx.Groups[key]
}

// Records returns the total number of indexed records, keyed and unkeyed.
func (idx *Index) Records() int {
	n := len(idx.Unkeyed)
	for _, g := range idx.Groups {
		n += len(g.Primary) + len(g.Layer)
	}
	return n
}
