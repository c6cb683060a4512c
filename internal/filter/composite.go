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

// Package filter implements the row filters used by the grid's filter proxy.
package filter

import (
	"fmt"
	"strings"

	"curator/datatable"
)

// LogicOp represents a logical operator for combining filters.
type LogicOp int

const (
	// LogicAND requires all filters to pass.
	LogicAND LogicOp = iota
	// LogicOR requires at least one filter to pass.
	LogicOR
)

// String returns the string representation of a LogicOp.
func (op LogicOp) String() string {
	switch op {
	case LogicAND:
		return "AND"
	case LogicOR:
		return "OR"
	default:
		return fmt.Sprintf("unknown(%d)", op)
	}
}

// CompositeFilter combines multiple filters with AND or OR logic.
// An empty composite accepts every row regardless of Logic.
type CompositeFilter struct {
	Filters []datatable.Filter
	Logic   LogicOp
}

// AnyOf returns a composite that passes when at least one filter passes.
func AnyOf(filters ...datatable.Filter) *CompositeFilter {
	return &CompositeFilter{Filters: filters, Logic: LogicOR}
}

// AllOf returns a composite that passes when every filter passes.
func AllOf(filters ...datatable.Filter) *CompositeFilter {
	return &CompositeFilter{Filters: filters, Logic: LogicAND}
}

// Evaluate implements datatable.Filter. It short-circuits on the first
// decisive result.
func (f *CompositeFilter) Evaluate(row []datatable.Value, columnNames []string) (bool, error) {
	if len(f.Filters) == 0 {
		return true, nil
	}

	var decisive bool
	switch f.Logic {
	case LogicAND:
		decisive = false
	case LogicOR:
		decisive = true
	default:
		return false, fmt.Errorf("%w: unknown logic operator %d", datatable.ErrInvalidFilter, f.Logic)
	}

	for _, filter := range f.Filters {
		passes, err := filter.Evaluate(row, columnNames)
		if err != nil {
			return false, err
		}
		if passes == decisive {
			return decisive, nil
		}
	}
	return !decisive, nil
}

// Description implements datatable.Filter.
func (f *CompositeFilter) Description() string {
	if len(f.Filters) == 0 {
		return "empty filter"
	}

	descriptions := make([]string, len(f.Filters))
	for i, filter := range f.Filters {
		descriptions[i] = filter.Description()
	}
	return "(" + strings.Join(descriptions, " "+f.Logic.String()+" ") + ")"
}
