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
	"errors"
	"fmt"
	"strings"

	"curator/cellstate"
	"curator/config"
)

// ErrUnknownRule is returned for a rule kind with no implementation.
var ErrUnknownRule = errors.New("unknown rule kind")

// RuleSet indexes rules by the column they guard. Column names match
// case-insensitively.
type RuleSet struct {
	byColumn map[string][]Rule
	count    int
}

// NewRuleSet returns a set holding rules.
func NewRuleSet(rules ...Rule) *RuleSet {
	rs := &RuleSet{byColumn: make(map[string][]Rule)}
	for _, r := range rules {
		rs.Add(r)
	}
	return rs
}

// FromConfig builds rules from their configuration entries.
func FromConfig(entries []config.RuleConfig) (*RuleSet, error) {
	rs := NewRuleSet()
	for i, e := range entries {
		r, err := buildRule(e)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rs.Add(r)
	}
	return rs, nil
}

func buildRule(e config.RuleConfig) (Rule, error) {
	severity, err := e.SeverityStatus()
	if err != nil {
		return nil, err
	}
	switch e.Kind {
	case config.KindRequired:
		return RequiredRule{Column: e.Column, Severity: severity, Message: e.Message}, nil
	case config.KindNumeric:
		return NumericRule{Column: e.Column, Min: e.Min, Max: e.Max, Severity: severity, Message: e.Message}, nil
	case config.KindChoice:
		return ChoiceRule{Column: e.Column, Values: e.Values, MaxDistance: e.MaxDistance, Message: e.Message}, nil
	case config.KindExpr:
		return NewExprRule(e.Column, e.Expr, severity, e.Message)
	case config.KindScript:
		return NewScriptRule(e.Column, e.Script, severity)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRule, e.Kind)
}

// Add registers r under each of its columns.
func (rs *RuleSet) Add(r Rule) {
	for _, col := range r.Columns() {
		key := strings.ToLower(col)
		rs.byColumn[key] = append(rs.byColumn[key], r)
	}
	rs.count++
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return rs.count
}

// For returns the rules guarding column.
func (rs *RuleSet) For(column string) []Rule {
	return rs.byColumn[strings.ToLower(column)]
}

// Check runs every rule of in.Column and returns the most severe result.
// A column with no rules is VALID.
func (rs *RuleSet) Check(in Input) cellstate.State {
	result := valid
	for _, r := range rs.For(in.Column) {
		st := r.Check(in)
		if rank(st.Status) > rank(result.Status) {
			result = st
		}
	}
	return result
}
