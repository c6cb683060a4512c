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
	"strings"

	"curator/cellstate"
)

// CustomCorrectionLabel is the menu entry that prompts for free text.
const CustomCorrectionLabel = "Custom Correction…"

// MenuEntry is one line of a SuggestionMenu.
type MenuEntry struct {
	Label     string
	Action    func()
	Disabled  bool
	Separator bool
}

// SuggestionMenu is a toolkit-neutral description of the correction menu.
type SuggestionMenu struct {
	Entries []MenuEntry
}

// SuggestionMenu builds the correction menu for cell: a disabled header with
// the original value, one "Change to:" entry per suggestion and a custom
// correction entry.
func (r *Renderer) SuggestionMenu(cell CellInfo) SuggestionMenu {
	original := cell.Text
	if len(cell.Suggestions) > 0 {
		original = cell.Suggestions[0].OriginalValue
	}

	entries := []MenuEntry{
		{Label: "Original: " + original, Disabled: true},
		{Separator: true},
	}
	for _, s := range cell.Suggestions {
		s := s
		entries = append(entries, MenuEntry{
			Label:  "Change to: " + s.CorrectedValue,
			Action: func() { r.SelectCorrection(cell.Coord, s) },
		})
	}
	entries = append(entries,
		MenuEntry{Separator: true},
		MenuEntry{
			Label:  CustomCorrectionLabel,
			Action: func() { r.promptCustom(cell.Coord, original) },
		},
	)
	return SuggestionMenu{Entries: entries}
}

// SelectCorrection emits a CorrectionSelected event.
func (r *Renderer) SelectCorrection(coord cellstate.Coordinate, s cellstate.Suggestion) {
	r.correctionSelected.Emit(CorrectionSelected{Coord: coord, Suggestion: s})
}

func (r *Renderer) promptCustom(coord cellstate.Coordinate, original string) {
	if r.prompter == nil {
		return
	}
	r.prompter.Prompt("Custom Correction", original, func(text string) {
		if strings.TrimSpace(text) == "" {
			return
		}
		r.SelectCorrection(coord, cellstate.Suggestion{OriginalValue: original, CorrectedValue: text})
	})
}
