package core

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// summaryTitle heads the plain-text report.
const summaryTitle = "Automatic Table Filling Report"

// SummaryMeta describes the run a summary belongs to.
type SummaryMeta struct {
	RunID           string    `json:"run_id"`
	GeneratedAt     time.Time `json:"generated_at"`
	PrimaryPath     string    `json:"complot_file"`
	LayerPath       string    `json:"layer_file"`
	TemplatePath    string    `json:"template_file,omitempty"`
	OutputPath      string    `json:"output_file"`
	PrimaryEncoding string    `json:"complot_encoding"`
}

// SummaryPath returns the text report path for an output workbook path:
// "out.xlsx" becomes "out_report.txt".
func SummaryPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "_report.txt"
}

// WriteSummaryText writes the plain-text report.
func WriteSummaryText(w io.Writer, meta SummaryMeta, s Summary) error {
	bw := bufio.NewWriter(w)
	rule := strings.Repeat("=", 50)

	fmt.Fprintln(bw, summaryTitle)
	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "Generated: %s\n", meta.GeneratedAt.Format("2006-01-02 15:04:05"))
	if meta.RunID != "" {
		fmt.Fprintf(bw, "Run ID: %s\n", meta.RunID)
	}
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "Complot file: %s\n", meta.PrimaryPath)
	fmt.Fprintf(bw, "Layer file: %s\n", meta.LayerPath)
	if meta.TemplatePath != "" {
		fmt.Fprintf(bw, "Template file: %s\n", meta.TemplatePath)
	}
	fmt.Fprintf(bw, "Output file: %s\n", meta.OutputPath)
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Data Loading Summary:")
	fmt.Fprintf(bw, "- Complot records: %d", s.PrimaryRecords)
	if meta.PrimaryEncoding != "" {
		fmt.Fprintf(bw, " (%s)", meta.PrimaryEncoding)
	}
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "- Layer records: %d\n", s.LayerRecords)
	fmt.Fprintf(bw, "- Records without file link: %d\n", s.Unkeyed)
	fmt.Fprintf(bw, "- Empty rows skipped: %d\n", s.SkippedRows)
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "File Link Analysis:")
	fmt.Fprintf(bw, "- Total unique links: %d\n", s.TotalKeys)
	fmt.Fprintf(bw, "- Found in both: %d\n", s.FoundInBoth)
	fmt.Fprintf(bw, "- Only in Complot: %d\n", s.PrimaryOnly)
	fmt.Fprintf(bw, "- Only in Layer: %d\n", s.LayerOnly)
	fmt.Fprintf(bw, "- Links with multiple records: %d\n", s.DuplicateKeys)
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Match Results:")
	fmt.Fprintf(bw, "- Perfect matches: %d\n", s.Perfect)
	fmt.Fprintf(bw, "- Partial matches: %d\n", s.Partial)
	fmt.Fprintf(bw, "- Unpaired duplicate records: %d\n", s.ExcessRecords)
	fmt.Fprintf(bw, "- Total rows: %d\n", s.OutputRows)

	if len(s.FieldMismatches) > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "Field Mismatches:")
		for _, fm := range s.FieldMismatches {
			fmt.Fprintf(bw, "- %s: %d\n", fm.Field, fm.Mismatches)
		}
	}

	return bw.Flush()
}

// SummaryDocument is the JSON form of a run summary.
type SummaryDocument struct {
	SummaryMeta
	Summary Summary `json:"summary"`
}

// MarshalSummary renders meta and s as indented JSON.
func MarshalSummary(meta SummaryMeta, s Summary) ([]byte, error) {
	return json.MarshalIndent(SummaryDocument{SummaryMeta: meta, Summary: s}, "", "  ")
}
