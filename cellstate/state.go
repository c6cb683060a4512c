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

// Package cellstate tracks per-cell validation and correction metadata.
//
// A coordinate that has no entry is in the default state: NORMAL with no
// error text and no suggestions. Resetting a cell removes its entry, so a
// reset cell and a never-touched cell are indistinguishable.
package cellstate

import (
	"fmt"
	"strings"
)

// Coordinate addresses one cell by row and column position.
type Coordinate struct {
	Row int
	Col int
}

// String returns "(row,col)".
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Status is the validation status of a cell. A cell has exactly one.
type Status int

const (
	// StatusNormal is the default, untouched status.
	StatusNormal Status = iota
	// StatusValid marks a value that passed validation.
	StatusValid
	// StatusInvalid marks a value that failed validation.
	StatusInvalid
	// StatusCorrectable marks a value with correction suggestions.
	StatusCorrectable
	// StatusWarning marks a suspicious but accepted value.
	StatusWarning
	// StatusInfo marks a value with an informational note.
	StatusInfo
)

var statusNames = [...]string{
	StatusNormal:      "normal",
	StatusValid:       "valid",
	StatusInvalid:     "invalid",
	StatusCorrectable: "correctable",
	StatusWarning:     "warning",
	StatusInfo:        "info",
}

// String returns the lower-case name of the status.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("unknown(%d)", s)
	}
	return statusNames[s]
}

// ParseStatus converts a name such as "warning" into a Status.
func ParseStatus(name string) (Status, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return StatusNormal, fmt.Errorf("unknown validation status %q", name)
}

// Suggestion is a one-click correction: replace OriginalValue with CorrectedValue.
type Suggestion struct {
	OriginalValue  string
	CorrectedValue string
}

// State is the metadata held for one cell.
// ErrorDetails is meaningful for INVALID and WARNING; Suggestions for CORRECTABLE.
type State struct {
	Status       Status
	ErrorDetails string
	Suggestions  []Suggestion
}

// IsDefault reports whether s is equivalent to an absent entry.
func (s State) IsDefault() bool {
	return s.Status == StatusNormal && s.ErrorDetails == "" && len(s.Suggestions) == 0
}

// HasError reports whether error text should be shown for this state.
func (s State) HasError() bool {
	return s.ErrorDetails != "" && (s.Status == StatusInvalid || s.Status == StatusWarning)
}

// HasSuggestions reports whether correction suggestions should be offered.
func (s State) HasSuggestions() bool {
	return s.Status == StatusCorrectable && len(s.Suggestions) > 0
}

func (s State) clone() State {
	if s.Suggestions != nil {
		s.Suggestions = append([]Suggestion(nil), s.Suggestions...)
	}
	return s
}

// Default is the sentinel returned for coordinates without an entry.
// Callers must not modify it.
var Default = State{Status: StatusNormal}

// Invalid builds an INVALID state carrying msg.
func Invalid(msg string) State {
	return State{Status: StatusInvalid, ErrorDetails: msg}
}

// Warning builds a WARNING state carrying msg.
func Warning(msg string) State {
	return State{Status: StatusWarning, ErrorDetails: msg}
}

// Correctable builds a CORRECTABLE state offering corrections of original.
func Correctable(original string, corrected ...string) State {
	s := State{Status: StatusCorrectable, Suggestions: make([]Suggestion, len(corrected))}
	for i, c := range corrected {
		s.Suggestions[i] = Suggestion{OriginalValue: original, CorrectedValue: c}
	}
	return s
}
