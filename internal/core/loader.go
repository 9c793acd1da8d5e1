package core

// loader.go reads the two sources into Records.
//
// Loading has one fatal path and many recoverable ones. A source that cannot
// be opened, decoded or that lacks a required column aborts the run. Row
// level trouble never does: a short row reads its missing cells as null, a
// long row drops the overflow, an unreadable cell becomes null, and each
// case leaves a note on the record so the report shows what happened.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/qualitycheck/internal/config"
)

// Loader reads Complot CSV files and layer workbooks.
type Loader struct {
	norm  *Normalizer
	match config.MatchConfig
	input config.InputConfig
}

// NewLoader creates a loader that cleans cells with norm.
func NewLoader(norm *Normalizer, match config.MatchConfig, input config.InputConfig) *Loader {
	return &Loader{norm: norm, match: match, input: input}
}

// LoadPrimaryFile loads the Complot CSV at path.
func (l *Loader) LoadPrimaryFile(path string) (*Table, error) {
	data, err := l.readFile(SourcePrimary, path)
	if err != nil {
		return nil, err
	}
	return l.LoadPrimary(bytes.NewReader(data), filepath.Base(path))
}

// LoadPrimary loads a Complot CSV from r. name is used in messages only.
func (l *Loader) LoadPrimary(r io.Reader, name string) (*Table, error) {
	data, err := l.readAll(r)
	if err != nil {
		return nil, &InputError{Source: SourcePrimary, Path: name, Err: err}
	}

	text, enc, err := DecodeText(data, l.input.FallbackEncoding)
	if err != nil {
		return nil, &InputError{Source: SourcePrimary, Path: name, Err: err}
	}

	cr := csv.NewReader(text)
	cr.Comma = []rune(l.input.CSVDelimiter)[0]
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &InputError{Source: SourcePrimary, Path: name, Err: errors.New("no header row")}
	}
	if err != nil {
		return nil, &InputError{Source: SourcePrimary, Path: name, Err: fmt.Errorf("read header: %w", err)}
	}

	t, b, err := l.newBuilder(SourcePrimary, name, header, true)
	if err != nil {
		return nil, err
	}
	t.Encoding = enc

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			b.addBroken(perr.StartLine, perr.Err)
			continue
		}
		if err != nil {
			return nil, &InputError{Source: SourcePrimary, Path: name, Err: err}
		}
		line, _ := cr.FieldPos(0)
		b.add(line, row)
	}

	return t, nil
}

// LoadLayerFile loads the layer workbook at path.
func (l *Loader) LoadLayerFile(path string) (*Table, error) {
	data, err := l.readFile(SourceLayer, path)
	if err != nil {
		return nil, err
	}
	return l.LoadLayer(bytes.NewReader(data), filepath.Base(path))
}

// LoadLayer loads the first worksheet of a layer workbook from r.
func (l *Loader) LoadLayer(r io.Reader, name string) (*Table, error) {
	data, err := l.readAll(r)
	if err != nil {
		return nil, &InputError{Source: SourceLayer, Path: name, Err: err}
	}

	_, rows, err := ReadWorkbook(bytes.NewReader(data))
	if err != nil {
		return nil, &InputError{Source: SourceLayer, Path: name, Err: err}
	}

	// skip leading blank rows; the first non-blank one is the header
	start := 0
	for start < len(rows) && blankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, &InputError{Source: SourceLayer, Path: name, Err: errors.New("no header row")}
	}

	// excelize trims trailing empty cells, so short rows are normal here
	t, b, err := l.newBuilder(SourceLayer, name, rows[start], false)
	if err != nil {
		return nil, err
	}
	for i := start + 1; i < len(rows); i++ {
		b.add(i+1, rows[i])
	}
	return t, nil
}

// readFile reads a whole input file, enforcing the size limit.
func (l *Loader) readFile(source Source, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("%s: %w", source, ErrInputMissing)
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s %s: %w", source, path, ErrInputMissing)
	}
	if err != nil {
		return nil, &InputError{Source: source, Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &InputError{Source: source, Path: path, Err: errors.New("is a directory")}
	}
	if l.input.MaxFileSize > 0 && info.Size() > l.input.MaxFileSize {
		return nil, &InputError{Source: source, Path: path, Err: fmt.Errorf("file too large: %d bytes exceeds %d", info.Size(), l.input.MaxFileSize)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Source: source, Path: path, Err: err}
	}
	return data, nil
}

// readAll reads r up to the size limit.
func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	if l.input.MaxFileSize <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, l.input.MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.input.MaxFileSize {
		return nil, fmt.Errorf("file too large: exceeds %d bytes", l.input.MaxFileSize)
	}
	return data, nil
}

// tableBuilder turns raw rows into Records for one source.
type tableBuilder struct {
	t      *Table
	norm   *Normalizer
	specs  []FieldSpec
	idx    HeaderIndex
	width  int
	strict bool // note short rows (delimited input only)
}

func (l *Loader) newBuilder(source Source, name string, header []string, strict bool) (*Table, *tableBuilder, error) {
	specs := SourceFields(source, l.match)
	idx, err := ValidateHeaders(source, header, specs)
	if err != nil {
		return nil, nil, err
	}

	t := &Table{Source: source, Name: name, Header: header}
	return t, &tableBuilder{
		t:      t,
		norm:   l.norm,
		specs:  specs,
		idx:    idx,
		width:  len(header),
		strict: strict,
	}, nil
}

// add appends the record for row, read from input line.
func (b *tableBuilder) add(line int, row []string) {
	if blankRow(row) {
		b.t.Skipped++
		return
	}

	rec := &Record{
		Source: b.t.Source,
		Line:   line,
		Fields: make(map[string]Value, len(b.specs)),
	}

	switch {
	case len(row) > b.width:
		rec.Notes = append(rec.Notes, fmt.Sprintf(NoteLongRow, line, len(row)-b.width))
		row = row[:b.width]
	case b.strict && len(row) < b.width:
		rec.Notes = append(rec.Notes, fmt.Sprintf(NoteShortRow, line, len(row), b.width))
	}

	for _, spec := range b.specs {
		pos, ok := b.idx[HeaderKey(spec.Name)]
		if !ok || pos >= len(row) {
			rec.Fields[spec.Name] = Null()
			continue
		}
		raw := row[pos]
		if isExcelError(raw) {
			rec.Notes = append(rec.Notes, fmt.Sprintf(NoteBadCell, line, spec.Name, CleanCell(raw)))
			rec.Fields[spec.Name] = Null()
			continue
		}
		rec.Fields[spec.Name] = b.norm.Clean(raw)
	}

	b.t.Records = append(b.t.Records, rec)
}

// addBroken keeps a row the CSV reader could not parse as an all-null
// record, so it still shows up in the report.
func (b *tableBuilder) addBroken(line int, cause error) {
	rec := &Record{
		Source: b.t.Source,
		Line:   line,
		Fields: make(map[string]Value, len(b.specs)),
		Notes:  []string{fmt.Sprintf(NoteUnparsedRow, line, cause)},
	}
	for _, spec := range b.specs {
		rec.Fields[spec.Name] = Null()
	}
	b.t.Records = append(b.t.Records, rec)
}
