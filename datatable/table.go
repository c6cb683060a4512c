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

package datatable

import "fmt"

// Table is a row-major record set with uniquely named columns.
// A Table is treated as immutable once handed to a Store.
type Table struct {
	columns []Column
	rows    [][]Value
}

// NewTable validates columns and rows and returns a Table.
// Column names must be unique and every row must be as wide as the header.
func NewTable(columns []Column, rows [][]Value) (*Table, error) {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		seen[c.Name] = true
	}

	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrRaggedRow, i, len(row), len(columns))
		}
	}

	t := &Table{
		columns: append([]Column(nil), columns...),
		rows:    make([][]Value, len(rows)),
	}
	for i, row := range rows {
		t.rows[i] = append([]Value(nil), row...)
	}
	return t, nil
}

// NewStringTable builds a Table of string columns from a header and text rows.
func NewStringTable(header []string, rows [][]string) (*Table, error) {
	columns := make([]Column, len(header))
	for i, name := range header {
		columns[i] = Column{Name: name, Type: TypeString}
	}

	values := make([][]Value, len(rows))
	for i, row := range rows {
		values[i] = make([]Value, len(row))
		for j, text := range row {
			values[i][j] = NewValue(text, TypeString)
		}
	}
	return NewTable(columns, values)
}

// Columns returns a copy of the column definitions.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// Row returns a copy of one row.
func (t *Table) Row(row int) ([]Value, error) {
	if row < 0 || row >= len(t.rows) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	return append([]Value(nil), t.rows[row]...), nil
}
