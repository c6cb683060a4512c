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

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"curator/internal/signal"
)

// Store is the in-memory Tabular Data Store.
// Reads and writes lock internally; change notifications are delivered after
// the lock is released so subscribers may read back from the store.
type Store struct {
	mu      sync.RWMutex
	columns []Column
	index   map[string]int
	rows    [][]Value
	changed signal.Signal[Change]
}

var _ DataStore = (*Store)(nil)

// NewStore creates a store holding t. A nil table yields an empty store.
func NewStore(t *Table) *Store {
	s := &Store{}
	s.load(t)
	return s
}

func (s *Store) load(t *Table) {
	if t == nil {
		t = &Table{}
	}
	s.columns = t.Columns()
	s.index = make(map[string]int, len(s.columns))
	for i, c := range s.columns {
		s.index[c.Name] = i
	}
	s.rows = make([][]Value, len(t.rows))
	for i, row := range t.rows {
		s.rows[i] = append([]Value(nil), row...)
	}
}

// Subscribe registers fn for change notifications.
func (s *Store) Subscribe(fn func(Change)) func() {
	return s.changed.Connect(fn)
}

// RowCount returns the number of rows.
func (s *Store) RowCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// ColumnCount returns the number of columns.
func (s *Store) ColumnCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.columns)
}

// Columns returns a copy of the column definitions.
func (s *Store) Columns() []Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Column(nil), s.columns...)
}

// ColumnName returns the name of the column at col.
func (s *Store) ColumnName(col int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if col < 0 || col >= len(s.columns) {
		return "", fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	return s.columns[col].Name, nil
}

// ColumnIndex returns the position of the named column.
func (s *Store) ColumnIndex(name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return i, nil
}

// ColumnType returns the type of the column at col.
func (s *Store) ColumnType(col int) (DataType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if col < 0 || col >= len(s.columns) {
		return TypeString, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	return s.columns[col].Type, nil
}

// Cell returns the value at row, col.
func (s *Store) Cell(row, col int) (Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if row < 0 || row >= len(s.rows) {
		return Value{}, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	if col < 0 || col >= len(s.columns) {
		return Value{}, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	return s.rows[row][col], nil
}

// Row returns a copy of the values of one row.
func (s *Store) Row(row int) ([]Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if row < 0 || row >= len(s.rows) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	return append([]Value(nil), s.rows[row]...), nil
}

// Snapshot returns the current contents as a Table.
func (s *Store) Snapshot() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := &Table{columns: append([]Column(nil), s.columns...), rows: make([][]Value, len(s.rows))}
	for i, row := range s.rows {
		t.rows[i] = append([]Value(nil), row...)
	}
	return t
}

// SetCellValue parses text into the column's type and stores it.
// Out-of-range coordinates and unparsable text are refused.
func (s *Store) SetCellValue(row, col int, text string) bool {
	s.mu.Lock()
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.columns) {
		s.mu.Unlock()
		return false
	}
	v, err := ParseValue(text, s.columns[col].Type)
	if err != nil {
		s.mu.Unlock()
		return false
	}
	s.rows[row][col] = v
	s.mu.Unlock()

	s.changed.Emit(Change{Kind: ChangeCell, Row: row, Col: col})
	return true
}

// UpdateData replaces the record set wholesale.
func (s *Store) UpdateData(t *Table) {
	s.mu.Lock()
	s.load(t)
	s.mu.Unlock()

	s.changed.Emit(Change{Kind: ChangeReset, Row: -1, Col: -1})
}

// SortByColumn stable-sorts rows by the named column. Nulls sort last in
// both directions. No notification is emitted; callers bracket the reorder.
func (s *Store) SortByColumn(name string, ascending bool) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortColumn, name)
	}

	perm := make([]int, len(s.rows))
	for i := range perm {
		perm[i] = i
	}

	cmp := newComparator(s.columns[col].Type)
	sort.SliceStable(perm, func(i, j int) bool {
		a, b := s.rows[perm[i]][col], s.rows[perm[j]][col]
		if a.IsNull || b.IsNull {
			return !a.IsNull && b.IsNull
		}
		c := cmp(a, b)
		if ascending {
			return c < 0
		}
		return c > 0
	})

	sorted := make([][]Value, len(s.rows))
	for newRow, oldRow := range perm {
		sorted[newRow] = s.rows[oldRow]
	}
	s.rows = sorted
	return perm, nil
}

func newComparator(dt DataType) func(a, b Value) int {
	switch dt {
	case TypeInt, TypeFloat:
		return func(a, b Value) int {
			x, y := toFloat(a.Raw), toFloat(b.Raw)
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case TypeBool:
		return func(a, b Value) int {
			x, _ := a.Raw.(bool)
			y, _ := b.Raw.(bool)
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	default:
		col := collate.New(language.Und, collate.IgnoreCase)
		return func(a, b Value) int {
			return col.CompareString(a.Formatted, b.Formatted)
		}
	}
}

func toFloat(raw interface{}) float64 {
	switch v := raw.(type) {
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case float64:
		return v
	}
	return 0
}
