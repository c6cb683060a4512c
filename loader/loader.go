// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package loader reads CSV, Parquet and JSON files into datatable tables
// and writes tables back out.
package loader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"curator/datatable"
)

// FileType represents the type of data file
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeParquet
	FileTypeJSON
)

func (f FileType) String() string {
	switch f {
	case FileTypeCSV:
		return "csv"
	case FileTypeParquet:
		return "parquet"
	case FileTypeJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ErrUnsupportedFile is returned for paths with an unknown extension.
var ErrUnsupportedFile = errors.New("unsupported file type")

// DetectFileType determines the type of file based on its extension.
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return FileTypeCSV
	case ".parquet":
		return FileTypeParquet
	case ".json":
		return FileTypeJSON
	default:
		return FileTypeUnknown
	}
}

// Load reads path into a table.
func Load(ctx context.Context, path string) (*datatable.Table, error) {
	switch DetectFileType(path) {
	case FileTypeCSV:
		return LoadCSV(path)
	case FileTypeParquet:
		return LoadParquet(ctx, path)
	case FileTypeJSON:
		return LoadJSON(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(path))
}

// DetectDelimiter picks the most frequent of comma, semicolon, tab and pipe
// on the first line. It falls back to comma.
func DetectDelimiter(r io.Reader) rune {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return ','
	}
	line := scanner.Text()
	best, bestCount := ',', 0
	for _, sep := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(line, string(sep)); n > bestCount {
			best, bestCount = sep, n
		}
	}
	return best
}

// DelimiterName returns a human-readable name for the separator
func DelimiterName(sep rune) string {
	switch sep {
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '\t':
		return "tab"
	case '|':
		return "pipe"
	default:
		return string(sep)
	}
}

// LoadCSV reads a headed CSV file, inferring column types from the data.
// Empty fields are null.
func LoadCSV(path string) (*datatable.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	sep := DetectDelimiter(f)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind CSV file: %w", err)
	}
	return ReadCSV(f, sep)
}

// ReadCSV reads headed CSV data separated by sep.
func ReadCSV(r io.Reader, sep rune) (*datatable.Table, error) {
	reader := csv.NewInferringReader(r,
		csv.WithHeader(true),
		csv.WithComma(sep),
		csv.WithAllocator(memory.NewGoAllocator()),
		csv.WithNullReader(true, ""),
	)
	defer reader.Release()

	var b tableBuilder
	for reader.Next() {
		if err := b.appendRecord(reader.Record()); err != nil {
			return nil, err
		}
	}
	if err := reader.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if b.columns == nil {
		if schema := reader.Schema(); schema != nil {
			b.setSchema(schema)
		}
	}
	return b.table()
}

// LoadParquet reads a Parquet file through Arrow.
func LoadParquet(ctx context.Context, path string) (*datatable.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f, file.WithReadProps(parquet.NewReaderProperties(memory.DefaultAllocator)))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}
	tbl, err := reader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer tbl.Release()

	return FromArrowTable(tbl)
}

// FromArrowTable copies an Arrow table into a datatable table.
func FromArrowTable(tbl arrow.Table) (*datatable.Table, error) {
	var b tableBuilder
	b.setSchema(tbl.Schema())

	tr := array.NewTableReader(tbl, tbl.NumRows())
	defer tr.Release()
	for tr.Next() {
		if err := b.appendRecord(tr.Record()); err != nil {
			return nil, err
		}
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("error reading table: %w", err)
	}
	return b.table()
}

// tableBuilder accumulates Arrow records as datatable rows.
type tableBuilder struct {
	columns []datatable.Column
	rows    [][]datatable.Value
}

func (b *tableBuilder) setSchema(schema *arrow.Schema) {
	b.columns = make([]datatable.Column, schema.NumFields())
	for i, field := range schema.Fields() {
		b.columns[i] = datatable.Column{Name: field.Name, Type: dataTypeOf(field.Type)}
	}
}

func (b *tableBuilder) appendRecord(rec arrow.Record) error {
	if b.columns == nil {
		b.setSchema(rec.Schema())
	}
	if int(rec.NumCols()) != len(b.columns) {
		return fmt.Errorf("%w: record has %d columns, want %d", datatable.ErrRaggedRow, rec.NumCols(), len(b.columns))
	}
	for i := 0; i < int(rec.NumRows()); i++ {
		row := make([]datatable.Value, len(b.columns))
		for c, col := range rec.Columns() {
			row[c] = valueAt(col, i, b.columns[c].Type)
		}
		b.rows = append(b.rows, row)
	}
	return nil
}

func (b *tableBuilder) table() (*datatable.Table, error) {
	return datatable.NewTable(b.columns, b.rows)
}
