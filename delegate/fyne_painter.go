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
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
)

// FynePainter turns paint operations into canvas objects positioned
// relative to the cell.
type FynePainter struct {
	objects []fyne.CanvasObject
}

var _ Painter = (*FynePainter)(nil)

// NewFynePainter returns an empty painter.
func NewFynePainter() *FynePainter {
	return &FynePainter{}
}

// Reset drops the objects painted so far.
func (p *FynePainter) Reset() {
	p.objects = p.objects[:0]
}

// Objects returns the painted objects in paint order.
func (p *FynePainter) Objects() []fyne.CanvasObject {
	return p.objects
}

// FillRect implements Painter.
func (p *FynePainter) FillRect(r Rect, c color.Color) {
	rect := canvas.NewRectangle(c)
	place(rect, r)
	p.objects = append(p.objects, rect)
}

// DrawText implements Painter.
func (p *FynePainter) DrawText(r Rect, text string) {
	t := canvas.NewText(text, theme.Color(theme.ColorNameForeground))
	t.Alignment = fyne.TextAlignLeading
	size := t.MinSize()
	place(t, NewRect(r.Pos.X, r.Pos.Y+(r.Size.Height-size.Height)/2, r.Size.Width, size.Height))
	p.objects = append(p.objects, t)
}

// DrawIcon implements Painter.
func (p *FynePainter) DrawIcon(r Rect, icon Icon) {
	res := IconResource(icon)
	if res == nil {
		return
	}
	img := canvas.NewImageFromResource(res)
	img.FillMode = canvas.ImageFillContain
	place(img, r)
	p.objects = append(p.objects, img)
}

// IconResource maps an overlay icon to a themed Fyne resource.
func IconResource(icon Icon) fyne.Resource {
	switch icon {
	case IconInvalid:
		return theme.NewErrorThemedResource(theme.ErrorIcon())
	case IconWarning:
		return theme.NewWarningThemedResource(theme.WarningIcon())
	case IconInfo:
		return theme.InfoIcon()
	case IconCorrection:
		return theme.NewPrimaryThemedResource(theme.ContentRedoIcon())
	default:
		return nil
	}
}

func place(o fyne.CanvasObject, r Rect) {
	o.Move(r.Pos)
	o.Resize(r.Size)
}
