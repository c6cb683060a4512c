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

// Package validation decides the status of proposed cell values and applies
// the outcome to the data and state stores.
package validation

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"curator/cellstate"
)

// Input is the value under test together with its row.
type Input struct {
	Column string
	Value  string
	// Lookup returns another column's value in the same row. The column
	// being validated reports Value.
	Lookup func(column string) (string, bool)
}

// Rule checks proposed values of the columns it guards.
type Rule interface {
	Columns() []string
	Check(in Input) cellstate.State
}

var valid = cellstate.State{Status: cellstate.StatusValid}

func failure(severity cellstate.Status, message string) cellstate.State {
	return cellstate.State{Status: severity, ErrorDetails: message}
}

func pick(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

// RequiredRule fails on blank values.
type RequiredRule struct {
	Column   string
	Severity cellstate.Status
	Message  string
}

func (r RequiredRule) Columns() []string { return []string{r.Column} }

func (r RequiredRule) Check(in Input) cellstate.State {
	if strings.TrimSpace(in.Value) != "" {
		return valid
	}
	return failure(r.Severity, pick(r.Message, in.Column+" is required"))
}

// NumericRule requires a number, optionally within [Min, Max].
// Blank values pass; combine with RequiredRule to forbid them.
type NumericRule struct {
	Column   string
	Min, Max *float64
	Severity cellstate.Status
	Message  string
}

func (r NumericRule) Columns() []string { return []string{r.Column} }

func (r NumericRule) Check(in Input) cellstate.State {
	text := strings.TrimSpace(in.Value)
	if text == "" {
		return valid
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return failure(r.Severity, pick(r.Message, in.Column+" must be numeric"))
	}
	if r.Min != nil && v < *r.Min {
		return failure(r.Severity, pick(r.Message, fmt.Sprintf("%s must be at least %v", in.Column, *r.Min)))
	}
	if r.Max != nil && v > *r.Max {
		return failure(r.Severity, pick(r.Message, fmt.Sprintf("%s must be at most %v", in.Column, *r.Max)))
	}
	return valid
}

// MaxSuggestions caps the corrections a ChoiceRule offers.
const MaxSuggestions = 3

// DefaultMaxDistance is used when a ChoiceRule has no MaxDistance.
const DefaultMaxDistance = 2

// ChoiceRule restricts a column to a closed vocabulary. Values within
// MaxDistance edits of an allowed value become CORRECTABLE.
type ChoiceRule struct {
	Column      string
	Values      []string
	MaxDistance int
	Message     string
}

func (r ChoiceRule) Columns() []string { return []string{r.Column} }

func (r ChoiceRule) Check(in Input) cellstate.State {
	text := strings.TrimSpace(in.Value)
	if text == "" {
		return valid
	}
	for _, v := range r.Values {
		if strings.EqualFold(v, text) {
			return valid
		}
	}

	limit := r.MaxDistance
	if limit <= 0 {
		limit = DefaultMaxDistance
	}
	type candidate struct {
		value string
		dist  int
	}
	var near []candidate
	lower := strings.ToLower(text)
	for _, v := range r.Values {
		if d := levenshtein.ComputeDistance(lower, strings.ToLower(v)); d <= limit {
			near = append(near, candidate{v, d})
		}
	}
	if len(near) == 0 {
		return failure(cellstate.StatusInvalid, pick(r.Message,
			fmt.Sprintf("%s must be one of: %s", in.Column, strings.Join(r.Values, ", "))))
	}
	slices.SortStableFunc(near, func(a, b candidate) int { return cmp.Compare(a.dist, b.dist) })

	corrected := make([]string, 0, MaxSuggestions)
	for _, c := range near[:min(len(near), MaxSuggestions)] {
		corrected = append(corrected, c.value)
	}
	return cellstate.Correctable(in.Value, corrected...)
}

// ExprRule fails when its row expression evaluates to false.
type ExprRule struct {
	Column   string
	Expr     *Expression
	Severity cellstate.Status
	Message  string
}

// NewExprRule parses src into a rule. An empty column binds the rule to
// every column the expression reads.
func NewExprRule(column, src string, severity cellstate.Status, message string) (*ExprRule, error) {
	expr, err := ParseExpression(src)
	if err != nil {
		return nil, err
	}
	return &ExprRule{Column: column, Expr: expr, Severity: severity, Message: message}, nil
}

func (r *ExprRule) Columns() []string {
	if r.Column != "" {
		return []string{r.Column}
	}
	return r.Expr.Columns()
}

func (r *ExprRule) Check(in Input) cellstate.State {
	if r.Expr.Eval(in.Lookup) {
		return valid
	}
	return failure(r.Severity, pick(r.Message, "failed check: "+r.Expr.String()))
}

// rank orders outcomes so the most severe result of several rules wins.
func rank(s cellstate.Status) int {
	switch s {
	case cellstate.StatusInvalid:
		return 4
	case cellstate.StatusCorrectable:
		return 3
	case cellstate.StatusWarning:
		return 2
	case cellstate.StatusInfo:
		return 1
	}
	return 0
}
