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

// DataSource provides read-only access to tabular data.
// Implementations must be safe for concurrent reads.
// All methods should return errors rather than panic.
type DataSource interface {
	// RowCount returns the total number of rows in the data source.
	RowCount() int

	// ColumnCount returns the total number of columns in the data source.
	ColumnCount() int

	// ColumnName returns the name of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnName(col int) (string, error)

	// ColumnIndex returns the position of the named column.
	// Returns ErrColumnNotFound if no column has that name.
	ColumnIndex(name string) (int, error)

	// ColumnType returns the data type of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnType(col int) (DataType, error)

	// Cell returns the value at the specified row and column.
	// Returns ErrInvalidRow if row is out of range.
	// Returns ErrInvalidColumn if col is out of range.
	Cell(row, col int) (Value, error)

	// Row returns all values for the specified row.
	// Returns ErrInvalidRow if row is out of range.
	Row(row int) ([]Value, error)
}

// Writer is the write API used by the validation and correction services.
// The view model never calls it.
type Writer interface {
	// SetCellValue parses text into the column's type and stores it.
	// It returns false, and emits nothing, when the write is refused.
	SetCellValue(row, col int, text string) bool

	// UpdateData replaces the whole record set and emits a reset change.
	UpdateData(t *Table)

	// SortByColumn reorders rows by the named column and returns the
	// permutation applied, where perm[newRow] == oldRow.
	SortByColumn(name string, ascending bool) ([]int, error)
}

// ChangeKind classifies a data store change notification.
type ChangeKind int

const (
	// ChangeReset means the record set was replaced wholesale.
	ChangeReset ChangeKind = iota
	// ChangeCell means a single cell value changed.
	ChangeCell
)

// Change is the notification emitted by a DataStore.
// Row and Col are only meaningful for ChangeCell.
type Change struct {
	Kind ChangeKind
	Row  int
	Col  int
}

// DataStore is a DataSource that can be written and observed.
type DataStore interface {
	DataSource
	Writer

	// Subscribe registers fn for change notifications and returns a
	// function that removes it.
	Subscribe(fn func(Change)) (unsubscribe func())
}

// Filter decides whether a row is visible.
type Filter interface {
	// Evaluate reports whether row passes. columnNames is parallel to row.
	Evaluate(row []Value, columnNames []string) (bool, error)

	// Description returns a human-readable form of the filter.
	Description() string
}
