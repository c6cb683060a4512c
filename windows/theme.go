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
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"curator/config"
)

var lightColors = map[fyne.ThemeColorName]color.Color{
	theme.ColorNameBackground:       color.NRGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0xff},
	theme.ColorNameButton:           color.NRGBA{R: 0xec, G: 0xef, B: 0xf1, A: 0xff},
	theme.ColorNamePrimary:          color.NRGBA{R: 0x00, G: 0x79, B: 0x6b, A: 0xff},
	theme.ColorNameHover:            color.NRGBA{R: 0xe0, G: 0xf2, B: 0xf1, A: 0xff},
	theme.ColorNameFocus:            color.NRGBA{R: 0x00, G: 0x96, B: 0x88, A: 0xff},
	theme.ColorNameForeground:       color.NRGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff},
	theme.ColorNameInputBackground:  color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	theme.ColorNameSelection:        color.NRGBA{R: 0xb2, G: 0xdf, B: 0xdb, A: 0xff},
	theme.ColorNameHeaderBackground: color.NRGBA{R: 0xec, G: 0xef, B: 0xf1, A: 0xff},
}

var darkColors = map[fyne.ThemeColorName]color.Color{
	theme.ColorNameBackground:       color.NRGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff},
	theme.ColorNameButton:           color.NRGBA{R: 0x37, G: 0x47, B: 0x4f, A: 0xff},
	theme.ColorNamePrimary:          color.NRGBA{R: 0x4d, G: 0xb6, B: 0xac, A: 0xff},
	theme.ColorNameHover:            color.NRGBA{R: 0x26, G: 0x32, B: 0x38, A: 0xff},
	theme.ColorNameFocus:            color.NRGBA{R: 0x80, G: 0xcb, B: 0xc4, A: 0xff},
	theme.ColorNameForeground:       color.NRGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff},
	theme.ColorNameInputBackground:  color.NRGBA{R: 0x2d, G: 0x2d, B: 0x2d, A: 0xff},
	theme.ColorNameSelection:        color.NRGBA{R: 0x00, G: 0x69, B: 0x5c, A: 0xff},
	theme.ColorNameHeaderBackground: color.NRGBA{R: 0x26, G: 0x32, B: 0x38, A: 0xff},
}

// CustomTheme is a dense theme for the curation grid. Inline icons match
// the configured status icon size.
type CustomTheme struct {
	grid config.GridConfig
}

var _ fyne.Theme = (*CustomTheme)(nil)

// NewCustomTheme returns a theme sized for grid.
func NewCustomTheme(grid config.GridConfig) *CustomTheme {
	return &CustomTheme{grid: grid}
}

func (m *CustomTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	colors := darkColors
	if variant == theme.VariantLight {
		colors = lightColors
	}
	if c, ok := colors[name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (m *CustomTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (m *CustomTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (m *CustomTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 4
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		if m.grid.IconSize > 0 {
			return m.grid.IconSize
		}
	case theme.SizeNameScrollBar:
		return 12
	case theme.SizeNameSeparatorThickness:
		return 1
	}
	return theme.DefaultTheme().Size(name)
}
