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

// Package viewmodel adapts the tabular data store and the cell state store
// into the role-based surface consumed by the grid widget.
package viewmodel

import (
	"fmt"
	"image/color"
	"log/slog"
	"strings"
	"sync"

	"curator/cellstate"
	"curator/datatable"
	"curator/internal/signal"
)

// DataModel is the part of the data store the adapter reads and observes.
type DataModel interface {
	datatable.DataSource
	SortByColumn(name string, ascending bool) ([]int, error)
	Subscribe(fn func(datatable.Change)) (unsubscribe func())
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithPalette overrides the status colours.
func WithPalette(p Palette) Option {
	return func(a *Adapter) { a.palette = p }
}

// WithValidationHandler connects fn to the adapter's validation requests.
func WithValidationHandler(fn func(ValidationRequest)) Option {
	return func(a *Adapter) {
		if fn != nil {
			a.disconnect = append(a.disconnect, a.validationRequested.Connect(fn))
		}
	}
}

// Adapter composes a DataModel and a cell state Reader into a bounds-safe,
// role-based read surface. It never writes to either store: edits are
// forwarded as ValidationRequests.
type Adapter struct {
	data    DataModel
	states  cellstate.Reader
	palette Palette
	logger  *slog.Logger

	mu        sync.RWMutex
	headers   []string
	sortState datatable.SortState

	cellsChanged        signal.Signal[CellsChanged]
	layoutAboutToChange signal.Signal[struct{}]
	layoutChanged       signal.Signal[struct{}]
	modelReset          signal.Signal[struct{}]
	validationRequested signal.Signal[ValidationRequest]

	disconnect []func()
	closeOnce  sync.Once
}

// New returns an Adapter over data and states and subscribes to both.
// A nil store is a configuration error.
func New(data DataModel, states cellstate.Reader, opts ...Option) (*Adapter, error) {
	if data == nil {
		return nil, datatable.ErrNoDataSource
	}
	if states == nil {
		return nil, datatable.ErrNoStateStore
	}

	a := &Adapter{
		data:      data,
		states:    states,
		palette:   DefaultPalette(),
		logger:    slog.Default(),
		sortState: datatable.Unsorted,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.reloadHeaders()

	a.disconnect = append(a.disconnect,
		data.Subscribe(a.onDataChanged),
		states.Subscribe(a.onStatesChanged),
	)
	return a, nil
}

// Close disconnects the adapter from its stores and handlers.
func (a *Adapter) Close() {
	a.closeOnce.Do(func() {
		for _, d := range a.disconnect {
			d()
		}
		a.disconnect = nil
	})
}

// OnCellsChanged registers fn for rectangle invalidations.
func (a *Adapter) OnCellsChanged(fn func(CellsChanged)) func() {
	return a.cellsChanged.Connect(fn)
}

// OnLayoutAboutToChange registers fn to run before rows are reordered.
func (a *Adapter) OnLayoutAboutToChange(fn func()) func() {
	return a.layoutAboutToChange.Connect(func(struct{}) { fn() })
}

// OnLayoutChanged registers fn to run after rows were reordered.
func (a *Adapter) OnLayoutChanged(fn func()) func() {
	return a.layoutChanged.Connect(func(struct{}) { fn() })
}

// OnModelReset registers fn to run after the record set was replaced.
func (a *Adapter) OnModelReset(fn func()) func() {
	return a.modelReset.Connect(func(struct{}) { fn() })
}

// OnValidationRequested registers fn for edit intents.
func (a *Adapter) OnValidationRequested(fn func(ValidationRequest)) func() {
	return a.validationRequested.Connect(fn)
}

// Palette returns the colours used for the background role.
func (a *Adapter) Palette() Palette {
	return a.palette
}

// RowCount returns the number of rows in the data store.
func (a *Adapter) RowCount() int {
	return a.data.RowCount()
}

// ColumnCount returns the number of columns in the data store.
func (a *Adapter) ColumnCount() int {
	return a.data.ColumnCount()
}

// HeaderData returns the column name at col, or "" when out of range.
func (a *Adapter) HeaderData(col int) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if col < 0 || col >= len(a.headers) {
		return ""
	}
	return a.headers[col]
}

// SortState returns the last applied sort.
func (a *Adapter) SortState() datatable.SortState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sortState
}

func (a *Adapter) inBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < a.data.RowCount() && col < a.data.ColumnCount()
}

func (a *Adapter) state(row, col int) (cellstate.State, bool) {
	if !a.inBounds(row, col) {
		return cellstate.Default, false
	}
	return a.states.FullState(row, col), true
}

// Data returns the value of role at row, col. Out-of-range coordinates
// yield the role's neutral value.
func (a *Adapter) Data(row, col int, role Role) any {
	switch role {
	case RoleDisplay:
		return a.DisplayValue(row, col)
	case RoleEdit:
		return a.EditValue(row, col)
	case RoleValidationStatus:
		return a.ValidationStatus(row, col)
	case RoleCorrectionState:
		return a.HasCorrection(row, col)
	case RoleErrorDetails:
		return a.ErrorText(row, col)
	case RoleSuggestions:
		return a.Suggestions(row, col)
	case RoleBackground:
		c, _ := a.Background(row, col)
		return c
	case RoleToolTip:
		tip, _ := a.ToolTip(row, col)
		return tip
	}
	return nil
}

// DisplayValue returns the formatted cell value.
func (a *Adapter) DisplayValue(row, col int) string {
	if !a.inBounds(row, col) {
		return ""
	}
	v, err := a.data.Cell(row, col)
	if err != nil {
		return ""
	}
	return v.Formatted
}

// EditValue returns the text an editor starts with.
func (a *Adapter) EditValue(row, col int) string {
	return a.DisplayValue(row, col)
}

// ValidationStatus returns the cell's status, NORMAL when untouched. The
// validation service stores accepted values as the default entry, so VALID
// is only seen from state readers that keep it explicitly.
func (a *Adapter) ValidationStatus(row, col int) cellstate.Status {
	st, _ := a.state(row, col)
	return st.Status
}

// HasCorrection reports whether the cell offers correction suggestions.
func (a *Adapter) HasCorrection(row, col int) bool {
	st, _ := a.state(row, col)
	return st.HasSuggestions()
}

// ErrorText returns the error details of INVALID and WARNING cells, or "".
func (a *Adapter) ErrorText(row, col int) string {
	st, _ := a.state(row, col)
	if !st.HasError() {
		return ""
	}
	return st.ErrorDetails
}

// Suggestions returns the cell's correction suggestions. Only CORRECTABLE
// cells have any. The slice is a copy.
func (a *Adapter) Suggestions(row, col int) []cellstate.Suggestion {
	st, _ := a.state(row, col)
	if st.Status != cellstate.StatusCorrectable {
		return nil
	}
	return st.Suggestions
}

// Background returns the override colour for INVALID and CORRECTABLE cells.
// ok is false when default styling applies.
func (a *Adapter) Background(row, col int) (c color.Color, ok bool) {
	st, _ := a.state(row, col)
	switch st.Status {
	case cellstate.StatusInvalid:
		return a.palette.Invalid, a.palette.Invalid != nil
	case cellstate.StatusCorrectable:
		return a.palette.Correctable, a.palette.Correctable != nil
	}
	return nil, false
}

// ToolTip returns the tooltip override: the error for INVALID cells, the
// suggestion list for CORRECTABLE cells.
func (a *Adapter) ToolTip(row, col int) (string, bool) {
	st, _ := a.state(row, col)
	switch {
	case st.Status == cellstate.StatusInvalid && st.ErrorDetails != "":
		return st.ErrorDetails, true
	case st.HasSuggestions():
		return FormatSuggestions(st.Suggestions), true
	}
	return "", false
}

// FormatSuggestions renders suggestions as a "Suggestions:" bullet block.
func FormatSuggestions(suggestions []cellstate.Suggestion) string {
	var b strings.Builder
	b.WriteString("Suggestions:")
	for _, s := range suggestions {
		b.WriteString("\n- ")
		b.WriteString(s.CorrectedValue)
	}
	return b.String()
}

// SetData forwards an edit as a ValidationRequest. The data store is not
// touched. It returns false when the coordinate is out of range.
func (a *Adapter) SetData(row, col int, value string) bool {
	if !a.inBounds(row, col) {
		a.logger.Debug("edit outside table ignored", "row", row, "col", col)
		return false
	}
	a.validationRequested.Emit(ValidationRequest{
		Coord: cellstate.Coordinate{Row: row, Col: col},
		Value: value,
	})
	return true
}

// Sort reorders rows by column col through the data store, bracketed by
// layout notifications. An unresolvable column is logged and ignored.
func (a *Adapter) Sort(col int, ascending bool) {
	name, err := a.data.ColumnName(col)
	if err != nil {
		a.logger.Warn("sort column not resolvable", "column", col, "error", err)
		return
	}

	a.layoutAboutToChange.Emit(struct{}{})
	perm, err := a.data.SortByColumn(name, ascending)
	if err != nil {
		a.logger.Warn("sort failed", "column", name, "error", err)
	} else {
		if p, ok := a.states.(cellstate.RowPermuter); ok {
			p.PermuteRows(perm)
		}
		dir := datatable.SortDescending
		if ascending {
			dir = datatable.SortAscending
		}
		a.mu.Lock()
		a.sortState = datatable.SortState{Column: col, Direction: dir}
		a.mu.Unlock()
	}
	a.layoutChanged.Emit(struct{}{})
}

func (a *Adapter) reloadHeaders() {
	n := a.data.ColumnCount()
	headers := make([]string, n)
	for i := range headers {
		name, err := a.data.ColumnName(i)
		if err != nil {
			name = fmt.Sprintf("Column %d", i+1)
		}
		headers[i] = name
	}

	a.mu.Lock()
	a.headers = headers
	a.mu.Unlock()
}

func (a *Adapter) onDataChanged(c datatable.Change) {
	switch c.Kind {
	case datatable.ChangeReset:
		a.reloadHeaders()
		a.mu.Lock()
		a.sortState = datatable.Unsorted
		a.mu.Unlock()
		a.modelReset.Emit(struct{}{})
	case datatable.ChangeCell:
		a.cellsChanged.Emit(CellsChanged{Rect: CellRect(c.Row, c.Col), Roles: DataRoles})
	}
}

func (a *Adapter) onStatesChanged(c cellstate.Change) {
	r, ok := BoundingRect(c.Coordinates)
	if !ok {
		return
	}
	a.cellsChanged.Emit(CellsChanged{Rect: r, Roles: StateRoles})
}
