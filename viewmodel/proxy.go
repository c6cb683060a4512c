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

package viewmodel

import (
	"log/slog"
	"strings"
	"sync"

	"curator/datatable"
	"curator/internal/filter"
	"curator/internal/signal"
)

// SourceModel is what the Proxy needs from the model it filters.
type SourceModel interface {
	RowCount() int
	ColumnCount() int
	HeaderData(col int) string
	DisplayValue(row, col int) string
	Sort(col int, ascending bool)
	OnModelReset(fn func()) func()
	OnLayoutChanged(fn func()) func()
	OnCellsChanged(fn func(CellsChanged)) func()
}

var _ SourceModel = (*Adapter)(nil)

// Proxy presents the subset of source rows that match a free-text filter.
// Sorting is forwarded to the source, which owns sort semantics.
type Proxy struct {
	source SourceModel
	logger *slog.Logger

	mu       sync.Mutex
	text     string
	columns  []int
	accepted []int
	reverse  map[int]int
	valid    bool

	invalidated signal.Signal[struct{}]
	disconnect  []func()
}

// NewProxy returns a proxy over source that starts with no filter.
func NewProxy(source SourceModel, logger *slog.Logger) *Proxy {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Proxy{source: source, logger: logger}
	p.disconnect = []func(){
		source.OnModelReset(p.invalidate),
		source.OnLayoutChanged(p.invalidate),
		source.OnCellsChanged(func(c CellsChanged) {
			if c.HasRole(RoleDisplay) {
				p.invalidate()
			}
		}),
	}
	return p
}

// Close disconnects the proxy from its source.
func (p *Proxy) Close() {
	for _, d := range p.disconnect {
		d()
	}
	p.disconnect = nil
}

// OnInvalidated registers fn to run whenever the accepted row set must be
// recomputed.
func (p *Proxy) OnInvalidated(fn func()) func() {
	return p.invalidated.Connect(func(struct{}) { fn() })
}

// SetFilterText sets the case-insensitive substring to match.
func (p *Proxy) SetFilterText(text string) {
	p.mu.Lock()
	p.text = text
	p.valid = false
	p.mu.Unlock()
	p.invalidated.Emit(struct{}{})
}

// FilterText returns the current filter text.
func (p *Proxy) FilterText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}

// SetFilterColumns chooses the source columns searched by the filter.
// With no columns set every column is searched.
func (p *Proxy) SetFilterColumns(indices ...int) {
	p.mu.Lock()
	p.columns = append([]int(nil), indices...)
	p.valid = false
	p.mu.Unlock()
	p.invalidated.Emit(struct{}{})
}

func (p *Proxy) invalidate() {
	p.mu.Lock()
	p.valid = false
	p.mu.Unlock()
	p.invalidated.Emit(struct{}{})
}

// FilterAcceptsRow applies the filter to one source row.
func (p *Proxy) FilterAcceptsRow(sourceRow int) bool {
	p.mu.Lock()
	text, columns := p.text, p.columns
	p.mu.Unlock()
	return p.accepts(sourceRow, text, columns)
}

func (p *Proxy) accepts(sourceRow int, text string, columns []int) bool {
	if text == "" {
		return true
	}
	if len(columns) == 0 {
		columns = make([]int, p.source.ColumnCount())
		for i := range columns {
			columns[i] = i
		}
	}

	names := make([]string, 0, len(columns))
	values := make([]datatable.Value, 0, len(columns))
	filters := make([]datatable.Filter, 0, len(columns))
	needle := strings.ToLower(text)
	for _, col := range columns {
		if col < 0 || col >= p.source.ColumnCount() {
			continue
		}
		name := p.source.HeaderData(col)
		names = append(names, name)
		values = append(values, datatable.NewValue(p.source.DisplayValue(sourceRow, col), datatable.TypeString))
		filters = append(filters, filter.NewContains(name, needle))
	}

	ok, err := filter.AnyOf(filters...).Evaluate(values, names)
	if err != nil {
		p.logger.Warn("filter evaluation failed", "row", sourceRow, "error", err)
		return false
	}
	return ok && len(filters) > 0
}

func (p *Proxy) ensure() {
	if p.valid {
		return
	}
	n := p.source.RowCount()
	p.accepted = p.accepted[:0]
	p.reverse = make(map[int]int)
	for row := 0; row < n; row++ {
		if p.accepts(row, p.text, p.columns) {
			p.reverse[row] = len(p.accepted)
			p.accepted = append(p.accepted, row)
		}
	}
	p.valid = true
}

// RowCount returns the number of accepted rows.
func (p *Proxy) RowCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ensure()
	return len(p.accepted)
}

// ColumnCount returns the source column count.
func (p *Proxy) ColumnCount() int {
	return p.source.ColumnCount()
}

// MapToSource converts a proxy row to a source row.
func (p *Proxy) MapToSource(row int) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ensure()
	if row < 0 || row >= len(p.accepted) {
		return -1, false
	}
	return p.accepted[row], true
}

// MapFromSource converts a source row to a proxy row. ok is false when the
// row is filtered out.
func (p *Proxy) MapFromSource(sourceRow int) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ensure()
	row, ok := p.reverse[sourceRow]
	return row, ok
}

// Sort forwards to the source model unconditionally.
func (p *Proxy) Sort(col int, ascending bool) {
	p.source.Sort(col, ascending)
}
