package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/qualitycheck/internal/config"
)

func testReportConfig() config.ReportConfig {
	return config.Defaults().Report
}

func TestDefaultColumns(t *testing.T) {
	m := config.Defaults().Match
	rc := testReportConfig()

	cols := DefaultColumns(m, rc)
	header := Layout{Columns: cols}.Header()

	// link + 5 extras + 4 compared, link + 4 compared, link compare + 4 compared, notes
	require.Len(t, header, 10+5+5+1)
	assert.Equal(t, "מהקומפלוט - \nקישור לקובץ", header[0])
	assert.Equal(t, "מהקומפלוט - \nדיסק", header[1])
	assert.Equal(t, "מהשכבה - \nקישור לקובץ", header[10])
	assert.Equal(t, "מהשכבה - \nגוש\nלפי בדיקה גאוגרפית", header[11])
	assert.Equal(t, "השוואה - \nקישור לקובץ\n(הערך החד ערכי\nהתוצאה חייבת\nלהיות TRUE)", header[15])
	assert.Equal(t, "השוואה - \nכתובת", header[19])
	assert.Equal(t, "הערות", header[20])
}

func TestNewLayout_Template(t *testing.T) {
	m := shortMatchConfig()
	rc := testReportConfig()

	template := []string{
		"הערות",
		"Surveyor",
		"מהשכבה -  block\nלפי בדיקה גאוגרפית",
		"הערות",
	}
	layout := NewLayout(m, rc, template)
	header := layout.Header()

	require.Len(t, header, len(template)+len(DefaultColumns(m, rc))-2)
	assert.Equal(t, ColumnNotes, layout.Columns[0].Kind)
	assert.Equal(t, ColumnEmpty, layout.Columns[1].Kind, "unknown template column stays empty")
	assert.Equal(t, ColumnLayer, layout.Columns[2].Kind, "header match ignores whitespace differences")
	assert.Equal(t, fBlock, layout.Columns[2].Field)
	assert.Equal(t, template[2], header[2], "template spelling is kept")
	assert.Equal(t, ColumnEmpty, layout.Columns[3].Kind, "second use of a header stays empty")
	assert.Equal(t, "מהקומפלוט - \nlink", header[4], "unused produced columns follow")
}

func TestLayoutCells(t *testing.T) {
	m := shortMatchConfig()
	n := NewNormalizer(m)
	layout := NewLayout(m, testReportConfig(), nil)

	_, rows := matchRecords(t, m, n,
		[]*Record{rec(n, SourcePrimary, 2, fLink, "K1", fBlock, "5", fParcel, "<Null>")},
		[]*Record{rec(n, SourceLayer, 2, fLink, "K1", fBlock, "05", fParcel, "")},
	)
	require.Len(t, rows, 1)

	cells := layout.Cells(rows[0])
	// primary: link block parcel | layer: link block parcel | compare: link block parcel | notes
	require.Len(t, cells, 10)
	assert.Equal(t, []interface{}{"K1", "5", ""}, cells[0:3])
	assert.Equal(t, []interface{}{"K1", "05", ""}, cells[3:6])
	assert.Equal(t, []interface{}{true, false, true}, cells[6:9])
	assert.Equal(t, NoteMismatchPrefix+"block (5 ≠ 05)", cells[9])
}

func TestSummarize(t *testing.T) {
	m := shortMatchConfig()
	n := NewNormalizer(m)
	primary, layer := mixedFixture(n)

	idx, rows := matchRecords(t, m, n, primary, layer)
	s := Summarize(idx, rows, m.ComparedFields)

	// K1 partial, K3 perfect (excess ignored), K4 perfect, K2 layer-only, K6 complot-only
	assert.Equal(t, 5, s.TotalKeys)
	assert.Equal(t, 3, s.FoundInBoth)
	assert.Equal(t, 2, s.Perfect)
	assert.Equal(t, 1, s.Partial)
	assert.Equal(t, 1, s.PrimaryOnly)
	assert.Equal(t, 1, s.LayerOnly)
	assert.Equal(t, 2, s.Unkeyed)
	assert.Equal(t, 2, s.DuplicateKeys)
	assert.Equal(t, 3, s.ExcessRecords)
	assert.Equal(t, len(primary), s.PrimaryRecords)
	assert.Equal(t, len(layer), s.LayerRecords)
	assert.Equal(t, len(rows), s.OutputRows)
	assert.Equal(t, []FieldMismatch{{Field: fBlock, Mismatches: 1}, {Field: fParcel, Mismatches: 0}}, s.FieldMismatches)

	assert.Equal(t, s.FoundInBoth, s.Perfect+s.Partial)
	assert.Equal(t, s.TotalKeys, s.FoundInBoth+s.PrimaryOnly+s.LayerOnly)
}
