package core

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex(t *testing.T) {
	m := shortMatchConfig()
	n := NewNormalizer(m)

	primary := []*Record{
		rec(n, SourcePrimary, 2, fLink, "B-2"),
		rec(n, SourcePrimary, 3, fLink, " a-1 "),
		rec(n, SourcePrimary, 4, fLink, "<Null>"),
	}
	layer := []*Record{
		rec(n, SourceLayer, 2, fLink, "A-1"),
		rec(n, SourceLayer, 3, fLink, "C-3"),
		rec(n, SourceLayer, 4, fLink, "   "),
	}

	idx := BuildIndex(n, fLink, primary, layer)

	assert.Equal(t, []string{"a-1", "b-2", "c-3"}, idx.Keys)
	assert.Len(t, idx.Unkeyed, 2)
	assert.Equal(t, SourcePrimary, idx.Unkeyed[0].Source, "unkeyed keeps primary first")
	assert.Equal(t, CategoryBoth, idx.Group("a-1").Category())
	assert.Equal(t, CategoryPrimaryOnly, idx.Group("b-2").Category())
	assert.Equal(t, CategoryLayerOnly, idx.Group("c-3").Category())
	assert.Equal(t, 6, idx.Records())
	assert.True(t, primary[1].HasKey)
	assert.False(t, primary[2].HasKey)
}

func TestMatcher_BlockMismatch(t *testing.T) {
	m := shortMatchConfig()
	n := NewNormalizer(m)

	_, rows := matchRecords(t, m, n,
		[]*Record{rec(n, SourcePrimary, 2, fLink, "K1", fBlock, "5", fParcel, "12")},
		[]*Record{rec(n, SourceLayer, 2, fLink, "K1", fBlock, "05", fParcel, "12")},
	)

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, CategoryBoth, row.Category)
	require.Len(t, row.Comparisons, 2)
	assert.Equal(t, fBlock, row.Comparisons[0].Field)
	assert.False(t, row.Comparisons[0].Equal)
	assert.True(t, row.Comparisons[1].Equal)
	assert.Equal(t, []string{NoteMismatchPrefix + "block (5 ≠ 05)"}, row.Notes)
}

func TestMatcher_PerfectMatch(t *testing.T) {
	m := shortMatchConfig()
	n := NewNormalizer(m)

	_, rows := matchRecords(t, m, n,
		[]*Record{rec(n, SourcePrimary, 2, fLink, "k9", fBlock, "ABC", fParcel, "<Null>")},
		[]*Record{rec(n, SourceLayer, 2, fLink, "K9 ", fBlock, "abc ", fParcel, "")},
	)

	require.Len(t, rows, 1)
	assert.True(t, rows[0].AllEqual())
	assert.Equal(t, []string{NotePerfect}, rows[0].Notes)
}

func TestMatcher_LayerOnly(t *testing.T) {
	m := shortMatchConfig()
	n := NewNormalizer(m)

	_, rows := matchRecords(t, m, n,
		nil,
		[]*Record{rec(n, SourceLayer, 2, fLink, "K2", fBlock, "7")},
	)

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, CategoryLayerOnly, row.Category)
	assert.Nil(t, row.Primary)
	assert.Empty(t, row.Comparisons)
	assert.Equal(t, []string{NoteLayerOnly}, row.Notes)

	cells := NewLayout(m, testReportConfig(), nil).Cells(row)
	assert.Equal(t, "", cells[0], "primary link column is empty")
}

func TestMatcher_DuplicateKey(t *testing.T) {
	m := shortMatchConfig()
	n := NewNormalizer(m)

	_, rows := matchRecords(t, m, n,
		[]*Record{
			rec(n, SourcePrimary, 2, fLink, "K3", fBlock, "1"),
			rec(n, SourcePrimary, 3, fLink, "K3", fBlock, "2"),
		},
		[]*Record{rec(n, SourceLayer, 2, fLink, "K3", fBlock, "1")},
	)

	require.Len(t, rows, 2)

	pair := rows[0]
	assert.True(t, pair.Paired())
	assert.Equal(t, 2, pair.Primary.Line, "pairs in input order")
	assert.Contains(t, pair.Notes, fmt.Sprintf(NoteMultipleRecords, 2, 1))

	extra := rows[1]
	assert.True(t, extra.Excess)
	assert.Equal(t, 3, extra.Primary.Line)
	assert.Nil(t, extra.Layer)
	assert.Contains(t, extra.Notes, fmt.Sprintf(NoteMultipleRecords, 2, 1))
	assert.Contains(t, extra.Notes, NoteExcessRecord)
}

func TestMatcher_NullJoinKey(t *testing.T) {
	m := shortMatchConfig()
	n := NewNormalizer(m)

	_, rows := matchRecords(t, m, n,
		[]*Record{
			rec(n, SourcePrimary, 2, fLink, "<Null>", fBlock, "9"),
			rec(n, SourcePrimary, 3, fLink, "K5", fBlock, "1"),
		},
		[]*Record{rec(n, SourceLayer, 2, fLink, "K5", fBlock, "1")},
	)

	require.Len(t, rows, 2)
	last := rows[1]
	assert.Equal(t, CategoryUnkeyed, last.Category, "unkeyed rows come after keyed rows")
	assert.Equal(t, 2, last.Primary.Line)
	assert.Equal(t, []string{fmt.Sprintf(NoteMissingKey, fLink)}, last.Notes)
}

func TestMatcher_LoadNotesCarried(t *testing.T) {
	m := shortMatchConfig()
	n := NewNormalizer(m)

	p := rec(n, SourcePrimary, 2, fLink, "K1", fBlock, "1")
	p.Notes = []string{"short row"}

	_, rows := matchRecords(t, m, n, []*Record{p}, nil)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{NotePrimaryOnly, "short row"}, rows[0].Notes)
}

// mixedFixture exercises every row kind at once.
func mixedFixture(n *Normalizer) (primary, layer []*Record) {
	primary = []*Record{
		rec(n, SourcePrimary, 2, fLink, "K1", fBlock, "5", fParcel, "1"),
		rec(n, SourcePrimary, 3, fLink, "K3", fBlock, "1", fParcel, "1"),
		rec(n, SourcePrimary, 4, fLink, "K3", fBlock, "2", fParcel, "1"),
		rec(n, SourcePrimary, 5, fLink, "K4", fBlock, "4", fParcel, "4"),
		rec(n, SourcePrimary, 6, fLink, "", fBlock, "8"),
		rec(n, SourcePrimary, 7, fLink, "K6", fBlock, "6"),
	}
	layer = []*Record{
		rec(n, SourceLayer, 2, fLink, "K2", fBlock, "7"),
		rec(n, SourceLayer, 3, fLink, "k1", fBlock, "05", fParcel, "1"),
		rec(n, SourceLayer, 4, fLink, "K3", fBlock, "1", fParcel, "1"),
		rec(n, SourceLayer, 5, fLink, "K4", fBlock, "4", fParcel, "4"),
		rec(n, SourceLayer, 6, fLink, "K4", fBlock, "4", fParcel, "4"),
		rec(n, SourceLayer, 7, fLink, "K4", fBlock, "4", fParcel, "4"),
		rec(n, SourceLayer, 8, fLink, "nan"),
	}
	return primary, layer
}

func TestMatcher_EveryRecordOnce(t *testing.T) {
	m := shortMatchConfig()
	n := NewNormalizer(m)
	primary, layer := mixedFixture(n)

	_, rows := matchRecords(t, m, n, primary, layer)

	seen := make(map[*Record]int)
	for _, row := range rows {
		if row.Primary != nil {
			seen[row.Primary]++
		}
		if row.Layer != nil {
			seen[row.Layer]++
		}
	}
	for _, r := range append(append([]*Record{}, primary...), layer...) {
		assert.Equal(t, 1, seen[r], "%s line %d", r.Source, r.Line)
	}
	assert.Len(t, seen, len(primary)+len(layer))
}

func TestMatcher_Idempotent(t *testing.T) {
	m := shortMatchConfig()
	layout := NewLayout(m, testReportConfig(), nil)

	render := func() string {
		n := NewNormalizer(m)
		primary, layer := mixedFixture(n)
		_, rows := matchRecords(t, m, n, primary, layer)

		var sb strings.Builder
		for _, row := range rows {
			fmt.Fprintln(&sb, layout.Cells(row)...)
		}
		return sb.String()
	}

	assert.Equal(t, render(), render())
}

func TestMatcher_Cancelled(t *testing.T) {
	m := shortMatchConfig()
	n := NewNormalizer(m)
	primary, layer := mixedFixture(n)
	idx := BuildIndex(n, fLink, primary, layer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMatcher(n, m).Match(ctx, idx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatcher_Progress(t *testing.T) {
	m := shortMatchConfig()
	n := NewNormalizer(m)
	primary, layer := mixedFixture(n)
	idx := BuildIndex(n, fLink, primary, layer)

	var calls [][2]int
	_, err := NewMatcher(n, m).Match(t.Context(), idx, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	require.NoError(t, err)
	require.NotEmpty(t, calls)
	assert.Equal(t, [2]int{len(idx.Keys), len(idx.Keys)}, calls[len(calls)-1])
}
