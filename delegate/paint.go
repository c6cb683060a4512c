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

// Package delegate renders grid cells together with their validation and
// correction overlays and turns pointer input on those overlays into
// correction actions.
//
// Rendering is a pure function of the cell's current status: the renderer
// holds no per-cell state and never changes a status itself.
package delegate

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"

	"curator/cellstate"
)

// Variant selects the capability set of a Renderer. Each variant includes
// everything the previous one does.
type Variant int

const (
	// VariantBase paints the plain value and forwards edits for validation.
	VariantBase Variant = iota
	// VariantValidation adds status backgrounds, status icons and error tooltips.
	VariantValidation
	// VariantCorrection adds the correction indicator and its suggestion menu.
	VariantCorrection
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantBase:
		return "base"
	case VariantValidation:
		return "validation"
	case VariantCorrection:
		return "correction"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// Icon identifies an overlay glyph.
type Icon int

const (
	IconNone Icon = iota
	IconInvalid
	IconWarning
	IconInfo
	IconCorrection
)

// Rect is a cell-relative or absolute rectangle in Fyne units.
type Rect struct {
	Pos  fyne.Position
	Size fyne.Size
}

// NewRect builds a Rect from its components.
func NewRect(x, y, w, h float32) Rect {
	return Rect{Pos: fyne.NewPos(x, y), Size: fyne.NewSize(w, h)}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p fyne.Position) bool {
	return p.X >= r.Pos.X && p.X <= r.Pos.X+r.Size.Width &&
		p.Y >= r.Pos.Y && p.Y <= r.Pos.Y+r.Size.Height
}

// Painter receives the drawing operations of one cell.
type Painter interface {
	FillRect(r Rect, c color.Color)
	DrawText(r Rect, text string)
	DrawIcon(r Rect, icon Icon)
}

// CellInfo is the snapshot of roles a renderer paints from.
type CellInfo struct {
	Coord       cellstate.Coordinate
	Text        string
	Status      cellstate.Status
	ErrorText   string
	Suggestions []cellstate.Suggestion
	ToolTip     string
}

// paintStep is one stage of the paint pipeline.
type paintStep func(r *Renderer, p Painter, bounds Rect, cell CellInfo)

// pipeline returns the ordered paint stages for the renderer's variant:
// background fill, content, status icon, correction indicator.
func (r *Renderer) pipeline() []paintStep {
	switch r.variant {
	case VariantValidation:
		return []paintStep{paintBackground, paintContent, paintStatusIcon}
	case VariantCorrection:
		return []paintStep{paintBackground, paintContent, paintStatusIcon, paintCorrectionIndicator}
	default:
		return []paintStep{paintContent}
	}
}

func paintBackground(r *Renderer, p Painter, bounds Rect, cell CellInfo) {
	if !hasStatusFill(cell.Status) {
		return
	}
	if c, ok := r.palette.StatusColor(cell.Status); ok {
		p.FillRect(bounds, c)
	}
}

func paintContent(r *Renderer, p Painter, bounds Rect, cell CellInfo) {
	m := r.opts.Margin
	p.DrawText(NewRect(bounds.Pos.X+m, bounds.Pos.Y, bounds.Size.Width-2*m, bounds.Size.Height), cell.Text)
}

func paintStatusIcon(r *Renderer, p Painter, bounds Rect, cell CellInfo) {
	if icon := statusIcon(cell.Status); icon != IconNone {
		p.DrawIcon(r.StatusIconRect(bounds), icon)
	}
}

func paintCorrectionIndicator(r *Renderer, p Painter, bounds Rect, cell CellInfo) {
	if cell.Status == cellstate.StatusCorrectable {
		p.DrawIcon(r.IndicatorRect(bounds), IconCorrection)
	}
}

// hasStatusFill reports whether the status paints a background.
func hasStatusFill(s cellstate.Status) bool {
	return s != cellstate.StatusNormal && s != cellstate.StatusValid
}

// statusIcon returns the generic status icon. CORRECTABLE has none; its
// indicator is painted by the correction variant.
func statusIcon(s cellstate.Status) Icon {
	switch s {
	case cellstate.StatusInvalid:
		return IconInvalid
	case cellstate.StatusWarning:
		return IconWarning
	case cellstate.StatusInfo:
		return IconInfo
	default:
		return IconNone
	}
}

// StatusIconRect is the top-right corner box of the status icon.
func (r *Renderer) StatusIconRect(bounds Rect) Rect {
	s, m := r.opts.IconSize, r.opts.Margin
	return NewRect(bounds.Pos.X+bounds.Size.Width-s-m, bounds.Pos.Y+m, s, s)
}

// IndicatorRect is the correction indicator box: trailing edge, vertically centred.
func (r *Renderer) IndicatorRect(bounds Rect) Rect {
	s, m := r.opts.IconSize, r.opts.Margin
	return NewRect(bounds.Pos.X+bounds.Size.Width-s-m, bounds.Pos.Y+(bounds.Size.Height-s)/2, s, s)
}
