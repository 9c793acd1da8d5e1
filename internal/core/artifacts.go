package core

// artifacts.go writes the report workbook and the text summary as one unit.
//
// Both files are first written to temporary files in the target directory
// and only renamed into place once both are complete, so a failed run never
// leaves a half-written report next to an older summary.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/qualitycheck/internal/config"
)

// Artifacts are the files a run produced.
type Artifacts struct {
	ReportPath  string
	SummaryPath string
}

// WriteArtifacts writes rep to outputPath and its summary to
// SummaryPath(outputPath).
func WriteArtifacts(outputPath string, rep *Report, meta SummaryMeta, rc config.ReportConfig) (Artifacts, error) {
	if outputPath == "" {
		return Artifacts{}, &OutputError{Path: outputPath, Err: errors.New("output path is empty")}
	}

	dir := filepath.Dir(outputPath)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return Artifacts{}, &OutputError{Path: outputPath, Err: fmt.Errorf("output directory %s does not exist", dir)}
	}

	arts := Artifacts{ReportPath: outputPath, SummaryPath: SummaryPath(outputPath)}
	meta.OutputPath = outputPath

	reportTmp, err := writeTemp(dir, func(w io.Writer) error {
		return WriteReportWorkbook(w, rep, rc)
	})
	if err != nil {
		return Artifacts{}, &OutputError{Path: arts.ReportPath, Err: err}
	}

	summaryTmp, err := writeTemp(dir, func(w io.Writer) error {
		return WriteSummaryText(w, meta, rep.Summary)
	})
	if err != nil {
		os.Remove(reportTmp)
		return Artifacts{}, &OutputError{Path: arts.SummaryPath, Err: err}
	}

	if err := os.Rename(reportTmp, arts.ReportPath); err != nil {
		os.Remove(reportTmp)
		os.Remove(summaryTmp)
		return Artifacts{}, &OutputError{Path: arts.ReportPath, Err: err}
	}
	if err := os.Rename(summaryTmp, arts.SummaryPath); err != nil {
		os.Remove(summaryTmp)
		os.Remove(arts.ReportPath)
		return Artifacts{}, &OutputError{Path: arts.SummaryPath, Err: err}
	}
	return arts, nil
}

// writeTemp writes a temp file in dir with fill and returns its path.
// The temp file is removed on failure.
func writeTemp(dir string, fill func(io.Writer) error) (string, error) {
	f, err := os.CreateTemp(dir, ".qualitycheck-*.tmp")
	if err != nil {
		return "", err
	}
	name := f.Name()

	if err := fill(f); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}
