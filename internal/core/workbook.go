package core

// workbook.go reads and writes .xlsx files with excelize.
//
// Only the first worksheet of an input workbook is read, the way the GIS
// export tool writes it. Cell text is taken as Excel displays it, so numeric
// cells arrive formatted ("6158", not "6158.0").

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/qualitycheck/internal/config"
)

// defaultColumnWidth is the width of report columns, in characters.
const defaultColumnWidth = 18

// excelErrorValues are cell texts Excel shows for failed formulas.
var excelErrorValues = map[string]bool{
	"#N/A":    true,
	"#VALUE!": true,
	"#REF!":   true,
	"#DIV/0!": true,
	"#NUM!":   true,
	"#NAME?":  true,
	"#NULL!":  true,
}

// isExcelError reports whether a cell holds a formula error instead of data.
func isExcelError(s string) bool {
	return excelErrorValues[strings.ToUpper(strings.TrimSpace(s))]
}

// ReadWorkbook returns the name and rows of the first worksheet in r.
func ReadWorkbook(r io.Reader) (string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, errors.New("unsupported workbook: no worksheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return sheets[0], rows, nil
}

// ReadTemplateHeader returns the first non-empty row of the template
// workbook's first worksheet.
func ReadTemplateHeader(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	_, rows, err := ReadWorkbook(file)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if !blankRow(row) {
			return row, nil
		}
	}
	return nil, errors.New("no header row in template")
}

// WriteReportWorkbook writes rep as a single-sheet workbook to w.
// The header row is bold and wrapped; the sheet is right-to-left when
// rc.RightToLeft is set.
func WriteReportWorkbook(w io.Writer, rep *Report, rc config.ReportConfig) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := rc.SheetName
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	header := rep.Header()
	headerCells := make([]interface{}, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range rep.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		cells := rep.Cells(i)
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := formatReportSheet(f, sheet, len(header), rc.RightToLeft); err != nil {
		return err
	}

	return f.Write(w)
}

// formatReportSheet styles the header row, sets column widths, freezes the
// header and sets the sheet direction.
func formatReportSheet(f *excelize.File, sheet string, columns int, rtl bool) error {
	if columns == 0 {
		return nil
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, defaultColumnWidth); err != nil {
		return fmt.Errorf("column width: %w", err)
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return fmt.Errorf("sheet view: %w", err)
	}
	return nil
}

// blankRow reports whether every cell of row is empty or whitespace.
func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
