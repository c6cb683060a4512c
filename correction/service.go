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

// Package correction applies chosen suggestions to the data store and keeps
// a journal of what was changed.
package correction

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"curator/cellstate"
	"curator/datatable"
	"curator/metrics"
)

// Record is one applied correction.
type Record struct {
	ID        string    `yaml:"id"`
	Timestamp time.Time `yaml:"timestamp"`
	Row       int       `yaml:"row"`
	Column    string    `yaml:"column"`
	Original  string    `yaml:"original"`
	Corrected string    `yaml:"corrected"`
}

// Target is the data side corrections are written to.
type Target interface {
	ColumnName(col int) (string, error)
	SetCellValue(row, col int, text string) bool
}

// Service applies corrections.
type Service struct {
	data    Target
	states  cellstate.Writer
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	journal []Record
}

// New returns a correction service. m and logger may be nil.
func New(data Target, states cellstate.Writer, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{data: data, states: states, metrics: m, logger: logger, now: time.Now}
}

// Apply writes s.CorrectedValue at coord and clears the cell's state.
// A suggestion without a corrected value returns
// datatable.ErrMalformedSuggestion and a refused write returns
// datatable.ErrWriteRejected; neither changes anything.
func (s *Service) Apply(coord cellstate.Coordinate, sg cellstate.Suggestion) error {
	if strings.TrimSpace(sg.CorrectedValue) == "" {
		s.metrics.Correction(metrics.OutcomeMalformed)
		s.logger.Warn("malformed suggestion", "row", coord.Row, "col", coord.Col, "original", sg.OriginalValue)
		return fmt.Errorf("%w: empty corrected value for %q", datatable.ErrMalformedSuggestion, sg.OriginalValue)
	}
	if !s.data.SetCellValue(coord.Row, coord.Col, sg.CorrectedValue) {
		s.metrics.Correction(metrics.OutcomeRejected)
		s.logger.Warn("correction rejected", "row", coord.Row, "col", coord.Col, "value", sg.CorrectedValue)
		return fmt.Errorf("%w: row %d col %d", datatable.ErrWriteRejected, coord.Row, coord.Col)
	}
	s.states.ResetCellState(coord.Row, coord.Col)

	column, _ := s.data.ColumnName(coord.Col)
	rec := Record{
		ID:        uuid.NewString(),
		Timestamp: s.now(),
		Row:       coord.Row,
		Column:    column,
		Original:  sg.OriginalValue,
		Corrected: sg.CorrectedValue,
	}
	s.mu.Lock()
	s.journal = append(s.journal, rec)
	s.mu.Unlock()

	s.metrics.Correction(metrics.OutcomeApplied)
	s.logger.Info("correction applied", "id", rec.ID, "column", column, "original", rec.Original, "corrected", rec.Corrected)
	return nil
}

// Journal returns a copy of the applied corrections, oldest first.
func (s *Service) Journal() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.journal...)
}

// WriteJournal encodes the journal as a YAML list.
func (s *Service) WriteJournal(w io.Writer) error {
	records := s.Journal()
	if records == nil {
		records = []Record{}
	}
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(records); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
