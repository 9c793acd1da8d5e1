package templates

import (
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/qualitycheck/internal/core"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(t.Context(), &sb))
	return sb.String()
}

func TestRunList_EscapesFileNames(t *testing.T) {
	runs := []core.RunRecord{{
		ID:          "run-1",
		Status:      core.RunFailed,
		ErrorCode:   "VAL004",
		StartedAt:   time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
		PrimaryFile: `uploads/<script>alert("x").csv`,
		LayerFile:   `C:\in\a&b.xlsx`,
	}}

	html := render(t, RunList(runs))

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;alert(&#34;x&#34;).csv")
	assert.Contains(t, html, "a&amp;b.xlsx")
	assert.Contains(t, html, "failed (VAL004)")
	assert.NotContains(t, html, "/api/run/run-1/report", "failed runs have no downloads")
}

func TestRunList_Empty(t *testing.T) {
	assert.Contains(t, render(t, RunList(nil)), "No runs yet.")
}

func TestRunResult(t *testing.T) {
	html := render(t, RunResult(&core.RunResult{
		RunID: "run-2",
		Summary: core.Summary{
			TotalKeys:       3,
			Perfect:         2,
			SkippedRows:     1,
			FieldMismatches: []core.FieldMismatch{{Field: "<b>", Mismatches: 1}},
		},
	}))

	assert.Contains(t, html, "Check complete")
	assert.Contains(t, html, "<th>Empty rows skipped</th><td>1</td>")
	assert.Contains(t, html, "Mismatches: &lt;b&gt;")
	assert.Contains(t, html, `href="/api/run/run-2/report"`)
	assert.Contains(t, html, `href="/api/run/run-2/summary"`)
}

func TestErrorAlert_EscapesMessage(t *testing.T) {
	html := render(t, ErrorAlert(`<img src=x onerror=alert(1)>`, "", "FILE001"))

	assert.NotContains(t, html, "<img")
	assert.Contains(t, html, "&lt;img")
	assert.Contains(t, html, "Code: FILE001")
	assert.NotContains(t, html, "<p>", "no action paragraph when action is empty")
}

func TestLayout(t *testing.T) {
	html := render(t, Layout("a<b", RunForm()))

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, `dir="rtl"`)
	assert.Contains(t, html, "<title>a&lt;b</title>")
	assert.Contains(t, html, `enctype="multipart/form-data"`)
}
