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

package windows

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"curator/cellstate"
	"curator/datatable"
	"curator/delegate"
	"curator/viewmodel"
)

// fitSampleRows is how many rows are measured when sizing columns.
const fitSampleRows = 200

// GridOptions configures a Grid.
type GridOptions struct {
	MinColumnWidth float32
	// Menus receives right-click correction menus. Optional.
	Menus delegate.MenuPresenter
	// ToolTips is hidden when the pointer leaves a cell. Optional.
	ToolTips *ToolTipLayer
	Logger   *slog.Logger
}

// Grid shows a proxy over the adapter in a widget.Table and paints every
// cell through the renderer.
type Grid struct {
	widget.BaseWidget

	adapter  *viewmodel.Adapter
	proxy    *viewmodel.Proxy
	renderer *delegate.Renderer
	opts     GridOptions
	logger   *slog.Logger

	table   *widget.Table
	editing *gridCell
	sortCol int
	sortAsc bool

	disconnect []func()
}

// NewGrid builds a grid and subscribes it to the adapter and proxy.
func NewGrid(adapter *viewmodel.Adapter, proxy *viewmodel.Proxy, renderer *delegate.Renderer, opts GridOptions) *Grid {
	g := &Grid{
		adapter:  adapter,
		proxy:    proxy,
		renderer: renderer,
		opts:     opts,
		logger:   opts.Logger,
		sortCol:  -1,
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}

	g.table = widget.NewTableWithHeaders(
		func() (int, int) { return g.proxy.RowCount(), g.proxy.ColumnCount() },
		func() fyne.CanvasObject { return newGridCell(g) },
		func(id widget.TableCellID, o fyne.CanvasObject) { o.(*gridCell).bind(id) },
	)
	g.table.ShowHeaderColumn = false
	g.table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton("", nil)
	}
	g.table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		b := o.(*widget.Button)
		if id.Col < 0 {
			b.SetText("")
			b.OnTapped = nil
			return
		}
		col := id.Col
		b.SetText(g.HeaderLabel(col))
		b.OnTapped = func() { g.ToggleSort(col) }
	}

	g.disconnect = append(g.disconnect,
		adapter.OnCellsChanged(func(ev viewmodel.CellsChanged) {
			fyne.Do(func() { g.refreshRect(ev.Rect) })
		}),
		adapter.OnLayoutChanged(func() {
			fyne.Do(g.refreshAll)
		}),
		adapter.OnModelReset(func() {
			fyne.Do(g.reset)
		}),
		proxy.OnInvalidated(func() {
			if g.proxy.FilterText() != "" {
				fyne.Do(g.refreshAll)
			}
		}),
	)

	g.ExtendBaseWidget(g)
	g.fitColumns()
	return g
}

// CreateRenderer implements fyne.Widget.
func (g *Grid) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(g.table)
}

// Close disconnects the grid from its models.
func (g *Grid) Close() {
	for _, d := range g.disconnect {
		d()
	}
	g.disconnect = nil
}

// Table returns the underlying table widget.
func (g *Grid) Table() *widget.Table {
	return g.table
}

// HeaderLabel returns the header text of col with a sort arrow when the
// table is sorted by it.
func (g *Grid) HeaderLabel(col int) string {
	label := g.adapter.HeaderData(col)
	st := g.adapter.SortState()
	if st.Column != col {
		return label
	}
	switch st.Direction {
	case datatable.SortAscending:
		return label + " ▲"
	case datatable.SortDescending:
		return label + " ▼"
	}
	return label
}

// ToggleSort sorts by col, ascending first and flipping on repeated taps.
func (g *Grid) ToggleSort(col int) {
	if g.sortCol == col {
		g.sortAsc = !g.sortAsc
	} else {
		g.sortCol, g.sortAsc = col, true
	}
	g.CancelEdit()
	g.proxy.Sort(col, g.sortAsc)
}

// CancelEdit closes an open editor without committing it.
func (g *Grid) CancelEdit() {
	if g.editing != nil {
		g.editing.endEdit()
	}
}

func (g *Grid) refreshRect(r viewmodel.Rect) {
	if r.BottomRow < r.TopRow || r.RightCol < r.LeftCol {
		return
	}
	for row := r.TopRow; row <= r.BottomRow; row++ {
		viewRow, ok := g.proxy.MapFromSource(row)
		if !ok {
			continue
		}
		for col := r.LeftCol; col <= r.RightCol; col++ {
			g.table.RefreshItem(widget.TableCellID{Row: viewRow, Col: col})
		}
	}
}

func (g *Grid) refreshAll() {
	g.table.Refresh()
}

func (g *Grid) reset() {
	g.CancelEdit()
	g.sortCol = -1
	g.fitColumns()
	g.table.ScrollToTop()
	g.table.Refresh()
}

// fitColumns sizes each column to its widest sampled cell.
func (g *Grid) fitColumns() {
	rows := min(g.adapter.RowCount(), fitSampleRows)
	for col := 0; col < g.adapter.ColumnCount(); col++ {
		width := g.opts.MinColumnWidth
		header := widget.NewButton(g.HeaderLabel(col)+" ▲", nil)
		width = max(width, header.MinSize().Width)
		for row := 0; row < rows; row++ {
			width = max(width, g.renderer.SizeHint(cellstate.Coordinate{Row: row, Col: col}).Width)
		}
		g.table.SetColumnWidth(col, width)
	}
}

func (g *Grid) rowHeight() float32 {
	return g.renderer.SizeHint(cellstate.Coordinate{Row: -1, Col: -1}).Height
}

func (g *Grid) beginEdit(c *gridCell) {
	coord, ok := c.source()
	if !ok {
		return
	}
	if g.editing != nil && g.editing != c {
		g.editing.endEdit()
	}

	entry := g.renderer.CreateEditor(coord)
	commit := entry.OnSubmitted
	entry.OnSubmitted = func(text string) {
		c.endEdit()
		commit(text)
	}
	c.editor = entry
	g.editing = c
	c.content.Objects = []fyne.CanvasObject{entry}
	entry.Move(fyne.NewPos(0, 0))
	entry.Resize(c.Size())
	c.content.Refresh()

	if cv := fyne.CurrentApp().Driver().CanvasForObject(c); cv != nil {
		cv.Focus(entry)
	}
}

// gridCell is the table cell template. It paints through the grid's
// renderer and turns pointer input into delegate events.
type gridCell struct {
	widget.BaseWidget
	grid    *Grid
	id      widget.TableCellID
	painter *delegate.FynePainter
	content *fyne.Container
	editor  *widget.Entry
}

var (
	_ fyne.Tappable          = (*gridCell)(nil)
	_ fyne.SecondaryTappable = (*gridCell)(nil)
	_ fyne.DoubleTappable    = (*gridCell)(nil)
	_ desktop.Hoverable      = (*gridCell)(nil)
)

func newGridCell(g *Grid) *gridCell {
	c := &gridCell{
		grid:    g,
		id:      widget.TableCellID{Row: -1, Col: -1},
		painter: delegate.NewFynePainter(),
		content: container.NewWithoutLayout(),
	}
	c.ExtendBaseWidget(c)
	return c
}

func (c *gridCell) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.content)
}

func (c *gridCell) MinSize() fyne.Size {
	return fyne.NewSize(c.grid.opts.MinColumnWidth, c.grid.rowHeight())
}

func (c *gridCell) Resize(size fyne.Size) {
	if size == c.Size() {
		return
	}
	c.BaseWidget.Resize(size)
	if c.editor != nil {
		c.editor.Resize(size)
		return
	}
	c.repaint()
}

// Refresh repaints the cell from the model.
func (c *gridCell) Refresh() {
	c.repaint()
	c.BaseWidget.Refresh()
}

func (c *gridCell) bind(id widget.TableCellID) {
	if id != c.id && c.editor != nil {
		c.editor = nil
		if c.grid.editing == c {
			c.grid.editing = nil
		}
	}
	c.id = id
	c.repaint()
}

func (c *gridCell) source() (cellstate.Coordinate, bool) {
	if c.id.Row < 0 || c.id.Col < 0 {
		return cellstate.Coordinate{}, false
	}
	row, ok := c.grid.proxy.MapToSource(c.id.Row)
	return cellstate.Coordinate{Row: row, Col: c.id.Col}, ok
}

func (c *gridCell) bounds() delegate.Rect {
	size := c.Size()
	return delegate.NewRect(0, 0, size.Width, size.Height)
}

func (c *gridCell) repaint() {
	if c.editor != nil {
		return
	}
	c.painter.Reset()
	if coord, ok := c.source(); ok {
		c.grid.renderer.Paint(c.painter, c.bounds(), coord)
	}
	c.content.Objects = append(c.content.Objects[:0], c.painter.Objects()...)
	c.content.Refresh()
}

func (c *gridCell) endEdit() {
	c.editor = nil
	if c.grid.editing == c {
		c.grid.editing = nil
	}
	c.repaint()
}

// Tapped opens the correction menu when the indicator is hit and selects
// the cell otherwise.
func (c *gridCell) Tapped(ev *fyne.PointEvent) {
	coord, ok := c.source()
	if !ok {
		return
	}
	press := delegate.PressEvent{Pos: ev.Position, AbsolutePos: ev.AbsolutePosition}
	if c.grid.renderer.EditorEvent(press, c.bounds(), coord) {
		return
	}
	c.grid.table.Select(c.id)
}

// TappedSecondary opens the correction menu anywhere in a correctable cell.
func (c *gridCell) TappedSecondary(ev *fyne.PointEvent) {
	coord, ok := c.source()
	if !ok || c.grid.opts.Menus == nil || c.grid.renderer.Variant() < delegate.VariantCorrection {
		return
	}
	cell := c.grid.renderer.Cell(coord)
	if cell.Status != cellstate.StatusCorrectable {
		return
	}
	c.grid.opts.Menus.ShowMenu(c.grid.renderer.SuggestionMenu(cell), ev.AbsolutePosition)
}

// DoubleTapped starts editing unless the press lands on the correction
// indicator, which opens the suggestion menu instead.
func (c *gridCell) DoubleTapped(ev *fyne.PointEvent) {
	coord, ok := c.source()
	if !ok {
		return
	}
	press := delegate.PressEvent{Pos: ev.Position, AbsolutePos: ev.AbsolutePosition}
	if c.grid.renderer.EditorEvent(press, c.bounds(), coord) {
		return
	}
	c.grid.beginEdit(c)
}

func (c *gridCell) MouseIn(ev *desktop.MouseEvent) {
	c.hover(ev)
}

func (c *gridCell) MouseMoved(ev *desktop.MouseEvent) {
	c.hover(ev)
}

func (c *gridCell) MouseOut() {
	if c.grid.opts.ToolTips != nil {
		c.grid.opts.ToolTips.Hide()
	}
}

func (c *gridCell) hover(ev *desktop.MouseEvent) {
	coord, ok := c.source()
	shown := ok && c.grid.renderer.HelpEvent(delegate.PressEvent{Pos: ev.Position, AbsolutePos: ev.AbsolutePosition}, c.bounds(), coord)
	if !shown && c.grid.opts.ToolTips != nil {
		c.grid.opts.ToolTips.Hide()
	}
}
