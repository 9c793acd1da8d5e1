package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/qualitycheck/internal/config"
)

// Short field names keep the matcher tests readable.
const (
	fLink   = "link"
	fBlock  = "block"
	fParcel = "parcel"
)

func shortMatchConfig() config.MatchConfig {
	m := config.Defaults().Match
	m.JoinKeyField = fLink
	m.ComparedFields = []string{fBlock, fParcel}
	m.PrimaryExtraFields = nil
	m.LayerExtraFields = nil
	return m
}

// rec builds a record from alternating field/value pairs. "<nil>" stands for null.
func rec(n *Normalizer, source Source, line int, kv ...string) *Record {
	r := &Record{Source: source, Line: line, Fields: map[string]Value{}}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "<nil>" {
			r.Fields[kv[i]] = Null()
			continue
		}
		r.Fields[kv[i]] = n.Clean(kv[i+1])
	}
	return r
}

// matchRecords indexes and matches primary and layer with m.
func matchRecords(t *testing.T, m config.MatchConfig, n *Normalizer, primary, layer []*Record) (*Index, []ReportRow) {
	t.Helper()
	idx := BuildIndex(n, m.JoinKeyField, primary, layer)
	rows, err := NewMatcher(n, m).Match(t.Context(), idx, nil)
	require.NoError(t, err)
	return idx, rows
}

// writeFile writes data to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// writeCSV writes lines joined by CRLF, the way Complot exports them.
func writeCSV(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	return writeFile(t, dir, name, []byte(strings.Join(lines, "\r\n")+"\r\n"))
}

// writeXLSX writes rows to the first sheet of a new workbook.
func writeXLSX(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// readXLSX returns the rows of the first sheet of the workbook at path.
func readXLSX(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	_, rows, err := ReadWorkbook(file)
	require.NoError(t, err)
	return rows
}
