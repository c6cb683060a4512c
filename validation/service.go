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

package validation

import (
	"fmt"
	"log/slog"
	"strings"

	"curator/cellstate"
	"curator/datatable"
	"curator/metrics"
	"curator/viewmodel"
)

// Target is the data side the service reads rows from and writes accepted
// values to.
type Target interface {
	datatable.DataSource
	SetCellValue(row, col int, text string) bool
}

// Service turns validation requests into writes and state updates.
type Service struct {
	data    Target
	states  cellstate.Writer
	rules   *RuleSet
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New returns a service. m and logger may be nil.
func New(data Target, states cellstate.Writer, rules *RuleSet, m *metrics.Metrics, logger *slog.Logger) *Service {
	if rules == nil {
		rules = NewRuleSet()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{data: data, states: states, rules: rules, metrics: m, logger: logger}
}

// Validate returns the status value would receive at coord without
// changing anything.
func (s *Service) Validate(coord cellstate.Coordinate, value string) (cellstate.State, error) {
	name, err := s.data.ColumnName(coord.Col)
	if err != nil {
		return cellstate.Default, err
	}
	if coord.Row < 0 || coord.Row >= s.data.RowCount() {
		return cellstate.Default, fmt.Errorf("%w: %d", datatable.ErrInvalidRow, coord.Row)
	}
	return s.rules.Check(Input{
		Column: name,
		Value:  value,
		Lookup: s.rowLookup(s.columnIndex(), coord, value),
	}), nil
}

// Handle processes one edit. Accepted values (VALID, WARNING, INFO) are
// written through the data store and the cell takes the result state.
// Rejected values (INVALID, CORRECTABLE) are not written; only the state
// changes. A refused write leaves both stores untouched and returns
// datatable.ErrWriteRejected.
func (s *Service) Handle(req viewmodel.ValidationRequest) (cellstate.State, error) {
	st, err := s.Validate(req.Coord, req.Value)
	if err != nil {
		s.logger.Debug("validation request out of range", "row", req.Coord.Row, "col", req.Coord.Col, "error", err)
		return st, err
	}

	if accepted(st.Status) {
		if !s.data.SetCellValue(req.Coord.Row, req.Coord.Col, req.Value) {
			s.metrics.Validation(metrics.OutcomeRejected)
			s.logger.Warn("write rejected", "row", req.Coord.Row, "col", req.Coord.Col, "value", req.Value)
			return st, fmt.Errorf("%w: row %d col %d", datatable.ErrWriteRejected, req.Coord.Row, req.Coord.Col)
		}
	}
	s.states.UpdateStates(map[cellstate.Coordinate]cellstate.State{req.Coord: stored(st)})
	s.metrics.Validation(st.Status.String())
	s.logger.Debug("validated", "row", req.Coord.Row, "col", req.Coord.Col, "status", st.Status.String())
	return st, nil
}

// ValidateAll checks every stored value and applies the results in one
// batch. It returns the number of cells left with a non-default state.
func (s *Service) ValidateAll() int {
	index := s.columnIndex()
	rows, cols := s.data.RowCount(), s.data.ColumnCount()
	changes := make(map[cellstate.Coordinate]cellstate.State, rows*cols)
	flagged := 0

	for c := 0; c < cols; c++ {
		name, err := s.data.ColumnName(c)
		if err != nil || len(s.rules.For(name)) == 0 {
			continue
		}
		for r := 0; r < rows; r++ {
			v, err := s.data.Cell(r, c)
			if err != nil {
				continue
			}
			coord := cellstate.Coordinate{Row: r, Col: c}
			st := stored(s.rules.Check(Input{
				Column: name,
				Value:  v.Formatted,
				Lookup: s.rowLookup(index, coord, v.Formatted),
			}))
			if !st.IsDefault() {
				flagged++
			}
			changes[coord] = st
		}
	}
	s.states.UpdateStates(changes)
	s.logger.Info("validated table", "rows", rows, "flagged", flagged)
	return flagged
}

// columnIndex maps lower-cased column names to positions.
func (s *Service) columnIndex() map[string]int {
	index := make(map[string]int, s.data.ColumnCount())
	for c := 0; c < s.data.ColumnCount(); c++ {
		if name, err := s.data.ColumnName(c); err == nil {
			index[strings.ToLower(name)] = c
		}
	}
	return index
}

func (s *Service) rowLookup(index map[string]int, coord cellstate.Coordinate, proposed string) func(string) (string, bool) {
	return func(column string) (string, bool) {
		c, ok := index[strings.ToLower(column)]
		if !ok {
			return "", false
		}
		if c == coord.Col {
			return proposed, true
		}
		v, err := s.data.Cell(coord.Row, c)
		if err != nil {
			return "", false
		}
		return v.Formatted, true
	}
}

func accepted(s cellstate.Status) bool {
	switch s {
	case cellstate.StatusValid, cellstate.StatusWarning, cellstate.StatusInfo:
		return true
	}
	return false
}

// stored maps VALID to the default state so accepted cells hold no entry.
func stored(st cellstate.State) cellstate.State {
	if st.Status == cellstate.StatusValid {
		return cellstate.Default
	}
	return st
}
