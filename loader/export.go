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

package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"curator/datatable"
)

// Export writes t to path in the format given by its extension.
func Export(t *datatable.Table, path string) error {
	ft := DetectFileType(path)
	if ft == FileTypeUnknown {
		return fmt.Errorf("%w: %w: %s", datatable.ErrExportFailed, ErrUnsupportedFile, path)
	}

	tbl, err := ToArrowTable(t, memory.NewGoAllocator())
	if err != nil {
		return fmt.Errorf("%w: %w", datatable.ErrExportFailed, err)
	}
	defer tbl.Release()

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", datatable.ErrExportFailed, err)
	}
	// The parquet writer closes its sink, so the close error is not checked.
	defer out.Close()

	switch ft {
	case FileTypeCSV:
		err = WriteCSV(tbl, out, ',')
	case FileTypeParquet:
		err = WriteParquet(tbl, out)
	case FileTypeJSON:
		err = WriteJSON(tbl, out)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", datatable.ErrExportFailed, err)
	}
	return nil
}

// WriteParquet writes tbl as snappy-compressed Parquet with its Arrow schema
// stored.
func WriteParquet(tbl arrow.Table, w io.Writer) error {
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(tbl.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.WriteTable(tbl, max(tbl.NumRows(), 1)); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	return writer.Close()
}

// WriteCSV writes tbl with a header row. Nulls are written as empty fields.
func WriteCSV(tbl arrow.Table, w io.Writer, sep rune) error {
	writer := csv.NewWriter(w, tbl.Schema(),
		csv.WithComma(sep),
		csv.WithHeader(true),
		csv.WithNullWriter(""),
	)

	tr := array.NewTableReader(tbl, max(tbl.NumRows(), 1))
	defer tr.Release()
	wrote := false
	for tr.Next() {
		if err := writer.Write(tr.Record()); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
		wrote = true
	}
	if err := tr.Err(); err != nil {
		return fmt.Errorf("error reading table: %w", err)
	}
	if !wrote {
		// The header is only emitted with the first record.
		cols := emptyColumns(tbl.Schema())
		empty := array.NewRecord(tbl.Schema(), cols, 0)
		for _, c := range cols {
			c.Release()
		}
		defer empty.Release()
		if err := writer.Write(empty); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}
	return writer.Flush()
}

func emptyColumns(schema *arrow.Schema) []arrow.Array {
	mem := memory.NewGoAllocator()
	cols := make([]arrow.Array, schema.NumFields())
	for i, f := range schema.Fields() {
		b := array.NewBuilder(mem, f.Type)
		cols[i] = b.NewArray()
		b.Release()
	}
	return cols
}

// WriteJSON writes tbl as an indented array of objects keeping the column
// types.
func WriteJSON(tbl arrow.Table, w io.Writer) error {
	tr := array.NewTableReader(tbl, max(tbl.NumRows(), 1))
	defer tr.Release()

	schema := tbl.Schema()
	records := make([]orderedRecord, 0, tbl.NumRows())
	for tr.Next() {
		rec := tr.Record()
		for i := 0; i < int(rec.NumRows()); i++ {
			row := orderedRecord{names: make([]string, rec.NumCols()), values: make([]any, rec.NumCols())}
			for c, col := range rec.Columns() {
				row.names[c] = schema.Field(c).Name
				row.values[c] = typedValue(col, i)
			}
			records = append(records, row)
		}
	}
	if err := tr.Err(); err != nil {
		return fmt.Errorf("error reading table: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// orderedRecord marshals as a JSON object with keys in column order.
type orderedRecord struct {
	names  []string
	values []any
}

func (r orderedRecord) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, name := range r.names {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf = append(append(append(buf, k...), ':'), v...)
	}
	return append(buf, '}'), nil
}

// typedValue returns the value for JSON export, preserving numeric and
// boolean types.
func typedValue(col arrow.Array, pos int) any {
	if col.IsNull(pos) {
		return nil
	}
	switch c := col.(type) {
	case *array.Int64:
		return c.Value(pos)
	case *array.Float64:
		return c.Value(pos)
	case *array.Boolean:
		return c.Value(pos)
	case *array.String:
		return c.Value(pos)
	}
	return formatArrow(col, pos)
}
