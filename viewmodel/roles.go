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
	"fmt"
	"image/color"

	"curator/cellstate"
)

// Role is a named facet of a cell's presentation.
type Role int

const (
	RoleDisplay Role = iota
	RoleEdit
	RoleValidationStatus
	RoleCorrectionState
	RoleErrorDetails
	RoleSuggestions
	RoleBackground
	RoleToolTip
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleDisplay:
		return "display"
	case RoleEdit:
		return "edit"
	case RoleValidationStatus:
		return "validation-status"
	case RoleCorrectionState:
		return "correction-state"
	case RoleErrorDetails:
		return "error-details"
	case RoleSuggestions:
		return "suggestions"
	case RoleBackground:
		return "background"
	case RoleToolTip:
		return "tooltip"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// StateRoles are the roles invalidated by a cell state change.
var StateRoles = []Role{
	RoleBackground,
	RoleToolTip,
	RoleValidationStatus,
	RoleCorrectionState,
	RoleErrorDetails,
	RoleSuggestions,
}

// DataRoles are the roles invalidated by a cell value change.
var DataRoles = []Role{RoleDisplay, RoleEdit}

// Rect is an inclusive range of rows and columns.
type Rect struct {
	TopRow    int
	BottomRow int
	LeftCol   int
	RightCol  int
}

// CellRect returns the rectangle covering a single cell.
func CellRect(row, col int) Rect {
	return Rect{TopRow: row, BottomRow: row, LeftCol: col, RightCol: col}
}

// Contains reports whether row, col lies inside r.
func (r Rect) Contains(row, col int) bool {
	return row >= r.TopRow && row <= r.BottomRow && col >= r.LeftCol && col <= r.RightCol
}

// BoundingRect returns the smallest Rect covering coords.
// ok is false when coords is empty.
func BoundingRect(coords []cellstate.Coordinate) (r Rect, ok bool) {
	if len(coords) == 0 {
		return Rect{}, false
	}
	r = CellRect(coords[0].Row, coords[0].Col)
	for _, c := range coords[1:] {
		r.TopRow = min(r.TopRow, c.Row)
		r.BottomRow = max(r.BottomRow, c.Row)
		r.LeftCol = min(r.LeftCol, c.Col)
		r.RightCol = max(r.RightCol, c.Col)
	}
	return r, true
}

// CellsChanged tells the grid to repaint Rect for the listed roles.
type CellsChanged struct {
	Rect  Rect
	Roles []Role
}

// HasRole reports whether the notification covers role.
func (c CellsChanged) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ValidationRequest carries a proposed value for a cell to the validator.
type ValidationRequest struct {
	Coord cellstate.Coordinate
	Value string
}

// Palette holds the status colours shared by the view model and the delegates.
type Palette struct {
	Invalid     color.Color
	Correctable color.Color
	Warning     color.Color
	Info        color.Color
}

// DefaultPalette returns the built-in status colours.
func DefaultPalette() Palette {
	return Palette{
		Invalid:     color.NRGBA{R: 0xff, G: 0xcd, B: 0xd2, A: 0xff},
		Correctable: color.NRGBA{R: 0xff, G: 0xf5, B: 0x9d, A: 0xff},
		Warning:     color.NRGBA{R: 0xff, G: 0xe0, B: 0xb2, A: 0xff},
		Info:        color.NRGBA{R: 0xbb, G: 0xde, B: 0xfb, A: 0xff},
	}
}

// StatusColor returns the fill colour for status. NORMAL and VALID have none.
func (p Palette) StatusColor(status cellstate.Status) (color.Color, bool) {
	var c color.Color
	switch status {
	case cellstate.StatusInvalid:
		c = p.Invalid
	case cellstate.StatusCorrectable:
		c = p.Correctable
	case cellstate.StatusWarning:
		c = p.Warning
	case cellstate.StatusInfo:
		c = p.Info
	}
	return c, c != nil
}
