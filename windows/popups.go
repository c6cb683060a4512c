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
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"curator/delegate"
)

// toolTipOffset keeps the tooltip clear of the pointer.
var toolTipOffset = fyne.NewPos(12, 16)

// FyneMenu converts a suggestion menu into a Fyne menu.
func FyneMenu(menu delegate.SuggestionMenu) *fyne.Menu {
	items := make([]*fyne.MenuItem, 0, len(menu.Entries))
	for _, e := range menu.Entries {
		if e.Separator {
			items = append(items, fyne.NewMenuItemSeparator())
			continue
		}
		item := fyne.NewMenuItem(e.Label, e.Action)
		item.Disabled = e.Disabled
		items = append(items, item)
	}
	return fyne.NewMenu("", items...)
}

// MenuPopup shows suggestion menus as popup menus on a canvas.
type MenuPopup struct {
	canvas fyne.Canvas
}

var _ delegate.MenuPresenter = (*MenuPopup)(nil)

// NewMenuPopup returns a presenter for c.
func NewMenuPopup(c fyne.Canvas) *MenuPopup {
	return &MenuPopup{canvas: c}
}

// ShowMenu implements delegate.MenuPresenter.
func (m *MenuPopup) ShowMenu(menu delegate.SuggestionMenu, at fyne.Position) {
	widget.ShowPopUpMenuAtPosition(FyneMenu(menu), m.canvas, at)
}

// ToolTipLayer draws tooltips in a layer stacked over the window content.
// The layer holds no interactive objects, so pointer events pass through
// to the grid underneath.
type ToolTipLayer struct {
	layer *fyne.Container
	panel *fyne.Container
	label *widget.Label
	text  string
}

var _ delegate.ToolTipPresenter = (*ToolTipLayer)(nil)

// NewToolTipLayer returns a hidden tooltip layer.
func NewToolTipLayer() *ToolTipLayer {
	bg := canvas.NewRectangle(theme.Color(theme.ColorNameOverlayBackground))
	bg.StrokeColor = theme.Color(theme.ColorNameShadow)
	bg.StrokeWidth = 1
	bg.CornerRadius = theme.InputRadiusSize()

	t := &ToolTipLayer{label: widget.NewLabel("")}
	t.panel = container.NewStack(bg, t.label)
	t.panel.Hide()
	t.layer = container.NewWithoutLayout(t.panel)
	return t
}

// Object returns the layer to stack over the window content.
func (t *ToolTipLayer) Object() fyne.CanvasObject {
	return t.layer
}

// Text returns the tooltip currently shown, or "" when hidden.
func (t *ToolTipLayer) Text() string {
	return t.text
}

// Visible reports whether a tooltip is shown.
func (t *ToolTipLayer) Visible() bool {
	return t.panel.Visible()
}

// ShowToolTip implements delegate.ToolTipPresenter. at is an absolute
// canvas position.
func (t *ToolTipLayer) ShowToolTip(text string, at fyne.Position) {
	if text != t.text {
		t.text = text
		t.label.SetText(text)
	}
	size := t.panel.MinSize()
	t.panel.Resize(size)

	origin := fyne.NewPos(0, 0)
	if app := fyne.CurrentApp(); app != nil {
		origin = app.Driver().AbsolutePositionForObject(t.layer)
	}
	pos := at.Subtract(origin).Add(toolTipOffset)
	bounds := t.layer.Size()
	if bounds.Width > 0 && pos.X+size.Width > bounds.Width {
		pos.X = max(0, bounds.Width-size.Width)
	}
	if bounds.Height > 0 && pos.Y+size.Height > bounds.Height {
		pos.Y = max(0, at.Subtract(origin).Y-size.Height-toolTipOffset.Y)
	}
	t.panel.Move(pos)
	t.panel.Show()
	t.layer.Refresh()
}

// Hide removes the tooltip.
func (t *ToolTipLayer) Hide() {
	if !t.panel.Visible() {
		return
	}
	t.text = ""
	t.panel.Hide()
	t.layer.Refresh()
}

// FormPrompter asks for free text in a form dialog on a window.
type FormPrompter struct {
	w fyne.Window
}

var _ delegate.Prompter = (*FormPrompter)(nil)

// NewFormPrompter returns a prompter that shows its dialogs on w.
func NewFormPrompter(w fyne.Window) *FormPrompter {
	return &FormPrompter{w: w}
}

// Prompt implements delegate.Prompter.
func (p *FormPrompter) Prompt(title, initial string, submit func(text string)) {
	entry := widget.NewEntry()
	entry.SetText(initial)
	items := []*widget.FormItem{widget.NewFormItem("Value", entry)}
	d := dialog.NewForm(title, "Apply", "Cancel", items, func(ok bool) {
		if ok {
			submit(entry.Text)
		}
	}, p.w)
	d.Show()
	p.w.Canvas().Focus(entry)
}
