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

package cellstate

import (
	"sort"
	"sync"

	"curator/internal/signal"
)

// Change lists the coordinates touched by one store mutation.
type Change struct {
	Coordinates []Coordinate
}

// Reader is the read side of the store consumed by the view model.
type Reader interface {
	// FullState returns the state at row, col, or Default when absent.
	FullState(row, col int) State
	// Subscribe registers fn for change notifications.
	Subscribe(fn func(Change)) (unsubscribe func())
}

// Writer is the mutation side of the store used by the services.
type Writer interface {
	UpdateStates(changes map[Coordinate]State)
	ResetCellState(row, col int)
}

// RowPermuter is implemented by stores that can re-key rows after a sort.
type RowPermuter interface {
	PermuteRows(perm []int)
}

// Store is the authoritative map from Coordinate to State.
// It never checks bounds; it has no notion of the table's shape.
type Store struct {
	mu      sync.RWMutex
	states  map[Coordinate]State
	changed signal.Signal[Change]
}

var (
	_ Reader      = (*Store)(nil)
	_ Writer      = (*Store)(nil)
	_ RowPermuter = (*Store)(nil)
)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{states: make(map[Coordinate]State)}
}

// Subscribe registers fn for change notifications.
func (s *Store) Subscribe(fn func(Change)) func() {
	return s.changed.Connect(fn)
}

// FullState returns a copy of the state at row, col. Absent coordinates
// yield the Default sentinel without allocating.
func (s *Store) FullState(row, col int) State {
	s.mu.RLock()
	st, ok := s.states[Coordinate{Row: row, Col: col}]
	s.mu.RUnlock()
	if !ok {
		return Default
	}
	return st.clone()
}

// Has reports whether the coordinate has an entry.
func (s *Store) Has(row, col int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.states[Coordinate{Row: row, Col: col}]
	return ok
}

// UpdateStates replaces the entry of every coordinate in changes and then
// emits exactly one Change listing all of them. Entries equal to the default
// state remove the coordinate instead. An empty batch emits nothing.
func (s *Store) UpdateStates(changes map[Coordinate]State) {
	if len(changes) == 0 {
		return
	}

	coords := make([]Coordinate, 0, len(changes))
	s.mu.Lock()
	for c, st := range changes {
		if st.IsDefault() {
			delete(s.states, c)
		} else {
			s.states[c] = st.clone()
		}
		coords = append(coords, c)
	}
	s.mu.Unlock()

	sortCoordinates(coords)
	s.changed.Emit(Change{Coordinates: coords})
}

// ResetCellState removes the coordinate's entry and emits a Change for it.
func (s *Store) ResetCellState(row, col int) {
	c := Coordinate{Row: row, Col: col}
	s.mu.Lock()
	delete(s.states, c)
	s.mu.Unlock()

	s.changed.Emit(Change{Coordinates: []Coordinate{c}})
}

// Clear removes every entry with a single notification.
func (s *Store) Clear() {
	s.mu.Lock()
	coords := s.coordinatesLocked()
	s.states = make(map[Coordinate]State)
	s.mu.Unlock()

	if len(coords) > 0 {
		s.changed.Emit(Change{Coordinates: coords})
	}
}

// PermuteRows moves each entry from row perm[i] to row i, following a data
// sort. One notification covers both old and new positions.
func (s *Store) PermuteRows(perm []int) {
	newRow := make(map[int]int, len(perm))
	for n, o := range perm {
		newRow[o] = n
	}

	touched := make(map[Coordinate]bool)
	s.mu.Lock()
	moved := make(map[Coordinate]State, len(s.states))
	for c, st := range s.states {
		to := c
		if n, ok := newRow[c.Row]; ok {
			to.Row = n
		}
		moved[to] = st
		if to != c {
			touched[c] = true
			touched[to] = true
		}
	}
	s.states = moved
	s.mu.Unlock()

	if len(touched) == 0 {
		return
	}
	coords := make([]Coordinate, 0, len(touched))
	for c := range touched {
		coords = append(coords, c)
	}
	sortCoordinates(coords)
	s.changed.Emit(Change{Coordinates: coords})
}

// Len returns the number of cells with non-default state.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// Coordinates returns the coordinates with an entry in row-major order.
func (s *Store) Coordinates() []Coordinate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coordinatesLocked()
}

// CountByStatus tallies entries per status.
func (s *Store) CountByStatus() map[Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[Status]int)
	for _, st := range s.states {
		counts[st.Status]++
	}
	return counts
}

func (s *Store) coordinatesLocked() []Coordinate {
	coords := make([]Coordinate, 0, len(s.states))
	for c := range s.states {
		coords = append(coords, c)
	}
	sortCoordinates(coords)
	return coords
}

func sortCoordinates(coords []Coordinate) {
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Row != coords[j].Row {
			return coords[i].Row < coords[j].Row
		}
		return coords[i].Col < coords[j].Col
	})
}
