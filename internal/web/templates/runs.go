package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/qualitycheck/internal/core"
)

const pageTitle = "בקרת איכות - קומפלוט מול שכבה"

// Index is the home page: the run form and the recent runs.
func Index(runs []core.RunRecord) templ.Component {
	return Layout(pageTitle, component(func(ctx context.Context, h *htmlWriter) {
		h.render(ctx, RunForm())
		h.render(ctx, RunList(runs))
	}))
}

// RunForm uploads the inputs of a new run.
func RunForm() templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<form method="post" action="/api/run" enctype="multipart/form-data">`)
		h.raw(`<label>Complot CSV <input type="file" name="complot" accept=".csv,.txt" required></label>`)
		h.raw(`<label>Layer workbook <input type="file" name="layer" accept=".xlsx" required></label>`)
		h.raw(`<label>Template workbook (optional) <input type="file" name="template" accept=".xlsx"></label>`)
		h.raw(`<button type="submit">Run check</button></form>`)
	})
}

// RunList shows recent runs, newest first.
func RunList(runs []core.RunRecord) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<section id="runs"><h2>Recent runs</h2>`)
		if len(runs) == 0 {
			h.raw(`<p>No runs yet.</p></section>`)
			return
		}
		h.raw(`<table><thead><tr><th>Started</th><th>Status</th><th>Complot</th><th>Layer</th><th>Keys</th><th>Perfect</th><th>Partial</th><th></th></tr></thead><tbody>`)
		for _, run := range runs {
			h.raw(`<tr><td>`)
			h.text(run.StartedAt.Format("2006-01-02 15:04"))
			h.raw(`</td><td class="`)
			h.text(statusClass(run.Status))
			h.raw(`">`)
			h.text(string(run.Status))
			if run.ErrorCode != "" {
				h.textf(" (%s)", run.ErrorCode)
			}
			h.raw(`</td><td>`)
			h.text(baseName(run.PrimaryFile))
			h.raw(`</td><td>`)
			h.text(baseName(run.LayerFile))
			h.raw(`</td>`)
			if run.Summary != nil {
				h.raw(`<td>`)
				h.textf("%d", run.Summary.TotalKeys)
				h.raw(`</td><td>`)
				h.textf("%d", run.Summary.Perfect)
				h.raw(`</td><td>`)
				h.textf("%d", run.Summary.Partial)
				h.raw(`</td>`)
			} else {
				h.raw(`<td></td><td></td><td></td>`)
			}
			h.raw(`<td>`)
			if run.Status == core.RunSucceeded {
				downloadLinks(h, run.ID)
			}
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table></section>`)
	})
}

// RunResult is the fragment shown after a successful run.
func RunResult(res *core.RunResult) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		s := res.Summary
		h.raw(`<section class="result"><h2 class="ok">Check complete</h2><table><tbody>`)
		row := func(label string, n int) {
			h.raw(`<tr><th>`)
			h.text(label)
			h.raw(`</th><td>`)
			h.textf("%d", n)
			h.raw(`</td></tr>`)
		}
		row("Complot records", s.PrimaryRecords)
		row("Layer records", s.LayerRecords)
		row("Total unique links", s.TotalKeys)
		row("Found in both", s.FoundInBoth)
		row("Perfect matches", s.Perfect)
		row("Partial matches", s.Partial)
		row("Only in Complot", s.PrimaryOnly)
		row("Only in Layer", s.LayerOnly)
		row("Records without file link", s.Unkeyed)
		row("Empty rows skipped", s.SkippedRows)
		row("Links with multiple records", s.DuplicateKeys)
		for _, fm := range s.FieldMismatches {
			row("Mismatches: "+fm.Field, fm.Mismatches)
		}
		h.raw(`</tbody></table><p>`)
		downloadLinks(h, res.RunID)
		h.raw(`</p></section>`)
	})
}

// ResultPage shows a run result as a full page, for browsers without HTMX.
func ResultPage(res *core.RunResult) templ.Component {
	return Layout(pageTitle, component(func(ctx context.Context, h *htmlWriter) {
		h.render(ctx, RunResult(res))
		h.raw(`<p><a href="/">New check</a></p>`)
	}))
}

func downloadLinks(h *htmlWriter, runID string) {
	h.raw(`<a href="`)
	h.text(string(templ.URL("/api/run/" + runID + "/report")))
	h.raw(`">Report (.xlsx)</a> | <a href="`)
	h.text(string(templ.URL("/api/run/" + runID + "/summary")))
	h.raw(`">Summary (.txt)</a>`)
}

func statusClass(s core.RunStatus) string {
	if s == core.RunSucceeded {
		return "ok"
	}
	return "failed"
}

// baseName strips directories from an uploaded file path.
func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
