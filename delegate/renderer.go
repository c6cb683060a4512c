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

package delegate

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"curator/cellstate"
	"curator/internal/signal"
	"curator/viewmodel"
)

// Model is the role surface a Renderer reads. *viewmodel.Adapter satisfies it.
type Model interface {
	DisplayValue(row, col int) string
	EditValue(row, col int) string
	ValidationStatus(row, col int) cellstate.Status
	ErrorText(row, col int) string
	Suggestions(row, col int) []cellstate.Suggestion
	ToolTip(row, col int) (string, bool)
	Palette() viewmodel.Palette
}

var _ Model = (*viewmodel.Adapter)(nil)

// CorrectionSelected is emitted when the user picks a correction.
type CorrectionSelected struct {
	Coord      cellstate.Coordinate
	Suggestion cellstate.Suggestion
}

// MenuPresenter shows a suggestion menu at an absolute position.
type MenuPresenter interface {
	ShowMenu(menu SuggestionMenu, at fyne.Position)
}

// ToolTipPresenter shows tooltip text at an absolute position.
type ToolTipPresenter interface {
	ShowToolTip(text string, at fyne.Position)
}

// Prompter asks the user for free text and calls submit with the answer.
type Prompter interface {
	Prompt(title, initial string, submit func(text string))
}

// Options holds the renderer geometry.
type Options struct {
	IconSize float32
	Margin   float32
	// Measure returns the rendered size of text. Defaults to fyne.MeasureText.
	Measure func(text string) fyne.Size
}

// DefaultOptions returns 16 unit icons with a 4 unit margin.
func DefaultOptions() Options {
	return Options{IconSize: 16, Margin: 4}
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithOptions replaces the renderer geometry.
func WithOptions(o Options) Option {
	return func(r *Renderer) { r.opts = o }
}

// WithMenuPresenter sets where suggestion menus are shown.
func WithMenuPresenter(m MenuPresenter) Option {
	return func(r *Renderer) { r.menus = m }
}

// WithToolTipPresenter sets where tooltips are shown.
func WithToolTipPresenter(t ToolTipPresenter) Option {
	return func(r *Renderer) { r.tips = t }
}

// WithPrompter sets the free-text prompt used for custom corrections.
func WithPrompter(p Prompter) Option {
	return func(r *Renderer) { r.prompter = p }
}

// Renderer paints cells and handles in-cell interaction for one Variant.
type Renderer struct {
	variant  Variant
	model    Model
	palette  viewmodel.Palette
	opts     Options
	menus    MenuPresenter
	tips     ToolTipPresenter
	prompter Prompter

	validationRequested signal.Signal[viewmodel.ValidationRequest]
	correctionSelected  signal.Signal[CorrectionSelected]
}

// New returns a renderer of the given variant reading from model.
func New(variant Variant, model Model, opts ...Option) *Renderer {
	r := &Renderer{
		variant: variant,
		model:   model,
		palette: model.Palette(),
		opts:    DefaultOptions(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.opts.Measure == nil {
		r.opts.Measure = func(text string) fyne.Size {
			return fyne.MeasureText(text, theme.TextSize(), fyne.TextStyle{})
		}
	}
	return r
}

// Variant returns the renderer's capability set.
func (r *Renderer) Variant() Variant {
	return r.variant
}

// OnValidationRequested registers fn for committed edits.
func (r *Renderer) OnValidationRequested(fn func(viewmodel.ValidationRequest)) func() {
	return r.validationRequested.Connect(fn)
}

// OnCorrectionSelected registers fn for chosen corrections.
func (r *Renderer) OnCorrectionSelected(fn func(CorrectionSelected)) func() {
	return r.correctionSelected.Connect(fn)
}

// Cell reads the roles of coord from the model.
func (r *Renderer) Cell(coord cellstate.Coordinate) CellInfo {
	tip, _ := r.model.ToolTip(coord.Row, coord.Col)
	return CellInfo{
		Coord:       coord,
		Text:        r.model.DisplayValue(coord.Row, coord.Col),
		Status:      r.model.ValidationStatus(coord.Row, coord.Col),
		ErrorText:   r.model.ErrorText(coord.Row, coord.Col),
		Suggestions: r.model.Suggestions(coord.Row, coord.Col),
		ToolTip:     tip,
	}
}

// Paint draws coord into bounds through p.
func (r *Renderer) Paint(p Painter, bounds Rect, coord cellstate.Coordinate) {
	r.PaintCell(p, bounds, r.Cell(coord))
}

// PaintCell draws an already resolved cell.
func (r *Renderer) PaintCell(p Painter, bounds Rect, cell CellInfo) {
	for _, step := range r.pipeline() {
		step(r, p, bounds, cell)
	}
}

// SizeHint returns the preferred cell size. The width grows by one icon
// plus margin for every overlay icon the cell would paint.
func (r *Renderer) SizeHint(coord cellstate.Coordinate) fyne.Size {
	cell := r.Cell(coord)
	text := r.opts.Measure(cell.Text)
	m := r.opts.Margin
	size := fyne.NewSize(text.Width+2*m, max(text.Height, r.opts.IconSize)+2*m)

	if r.variant >= VariantValidation && statusIcon(cell.Status) != IconNone {
		size.Width += r.opts.IconSize + m
	}
	if r.variant >= VariantCorrection && cell.Status == cellstate.StatusCorrectable {
		size.Width += r.opts.IconSize + m
	}
	return size
}

// CreateEditor returns an entry pre-filled with the cell's edit value.
// Submitting it commits the edit for validation.
func (r *Renderer) CreateEditor(coord cellstate.Coordinate) *widget.Entry {
	entry := widget.NewEntry()
	entry.SetText(r.model.EditValue(coord.Row, coord.Col))
	entry.OnSubmitted = func(text string) {
		r.CommitEdit(coord, text)
	}
	return entry
}

// CommitEdit emits a validation request for value. Nothing is written.
func (r *Renderer) CommitEdit(coord cellstate.Coordinate, value string) {
	r.validationRequested.Emit(viewmodel.ValidationRequest{Coord: coord, Value: value})
}

// PressEvent is a pointer press inside a cell.
type PressEvent struct {
	// Pos is relative to the cell's bounds.
	Pos fyne.Position
	// AbsolutePos is relative to the canvas, for popups.
	AbsolutePos fyne.Position
}

// EditorEvent handles a press. It returns true when the press was consumed
// and the grid must not start editing.
func (r *Renderer) EditorEvent(ev PressEvent, bounds Rect, coord cellstate.Coordinate) bool {
	if r.variant >= VariantCorrection {
		cell := r.Cell(coord)
		if cell.Status == cellstate.StatusCorrectable && r.IndicatorRect(bounds).Contains(ev.Pos) {
			if r.menus != nil {
				r.menus.ShowMenu(r.SuggestionMenu(cell), ev.AbsolutePos)
			}
			return true
		}
	}
	return false
}

// HelpEvent shows the tooltip for a hover at ev. It returns false when the
// cell has nothing to show.
func (r *Renderer) HelpEvent(ev PressEvent, bounds Rect, coord cellstate.Coordinate) bool {
	text := r.helpText(ev, bounds, r.Cell(coord))
	if text == "" {
		return false
	}
	if r.tips != nil {
		r.tips.ShowToolTip(text, ev.AbsolutePos)
	}
	return true
}

func (r *Renderer) helpText(ev PressEvent, bounds Rect, cell CellInfo) string {
	if r.variant >= VariantCorrection && len(cell.Suggestions) > 0 && r.IndicatorRect(bounds).Contains(ev.Pos) {
		return viewmodel.FormatSuggestions(cell.Suggestions)
	}
	if r.variant >= VariantValidation && cell.ErrorText != "" {
		return cell.ErrorText
	}
	return cell.ToolTip
}
