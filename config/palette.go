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

package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"curator/viewmodel"
)

// Palette holds the status colours as #RRGGBB or #RRGGBBAA strings.
type Palette struct {
	Invalid     string `yaml:"invalid"`
	Correctable string `yaml:"correctable"`
	Warning     string `yaml:"warning"`
	Info        string `yaml:"info"`
}

// DefaultPalette mirrors viewmodel.DefaultPalette.
func DefaultPalette() Palette {
	d := viewmodel.DefaultPalette()
	return Palette{
		Invalid:     FormatColor(d.Invalid),
		Correctable: FormatColor(d.Correctable),
		Warning:     FormatColor(d.Warning),
		Info:        FormatColor(d.Info),
	}
}

// Colors parses the palette. An empty entry falls back to the default colour.
func (p Palette) Colors() (viewmodel.Palette, error) {
	out := viewmodel.DefaultPalette()
	fields := []struct {
		name  string
		value string
		dst   *color.Color
	}{
		{"invalid", p.Invalid, &out.Invalid},
		{"correctable", p.Correctable, &out.Correctable},
		{"warning", p.Warning, &out.Warning},
		{"info", p.Info, &out.Info},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		c, err := ParseColor(f.value)
		if err != nil {
			return out, fmt.Errorf("palette.%s: %w", f.name, err)
		}
		*f.dst = c
	}
	return out, nil
}

// ParseColor parses #RRGGBB or #RRGGBBAA.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("colour %q must be #RRGGBB or #RRGGBBAA", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// FormatColor renders c as #RRGGBBAA.
func FormatColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}
