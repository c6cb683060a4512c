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
	"strconv"
	"strings"
)

// CompOp is a comparison operator of the row expression language.
type CompOp int

const (
	OpEqual CompOp = iota
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpContains
)

// operators is ordered so two-character symbols match before their prefixes.
var operators = []struct {
	op     CompOp
	symbol string
}{
	{OpGreaterEqual, ">="},
	{OpLessEqual, "<="},
	{OpNotEqual, "!="},
	{OpEqual, "="},
	{OpGreater, ">"},
	{OpLess, "<"},
	{OpContains, "~"},
}

func (op CompOp) String() string {
	for _, o := range operators {
		if o.op == op {
			return o.symbol
		}
	}
	return "?"
}

// LogicalOp joins two comparisons.
type LogicalOp int

const (
	LogicAND LogicalOp = iota
	LogicOR
)

// Comparison is one "column op value" term.
type Comparison struct {
	Column   string
	Operator CompOp
	Value    string
}

// Expression is a chain of comparisons joined left to right by AND/OR,
// for example `Score >= 0 AND Score <= 100`.
type Expression struct {
	Terms []Comparison
	Logic []LogicalOp
	src   string
}

// ParseExpression parses src. Column names are resolved at evaluation time.
func ParseExpression(src string) (*Expression, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	expr := &Expression{src: strings.TrimSpace(src)}
	for i, tok := range splitLogic(src) {
		if i%2 == 1 {
			switch tok {
			case "AND":
				expr.Logic = append(expr.Logic, LogicAND)
			case "OR":
				expr.Logic = append(expr.Logic, LogicOR)
			default:
				return nil, fmt.Errorf("expected AND or OR, found %q", tok)
			}
			continue
		}
		term, err := parseComparison(tok)
		if err != nil {
			return nil, err
		}
		expr.Terms = append(expr.Terms, term)
	}
	if len(expr.Terms) == 0 || len(expr.Logic) != len(expr.Terms)-1 {
		return nil, fmt.Errorf("invalid expression %q: mismatched terms and operators", src)
	}
	return expr, nil
}

// String returns the source text.
func (e *Expression) String() string {
	return e.src
}

// Columns returns the distinct column names the expression reads.
func (e *Expression) Columns() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range e.Terms {
		key := strings.ToLower(t.Column)
		if !seen[key] {
			seen[key] = true
			out = append(out, t.Column)
		}
	}
	return out
}

// Eval evaluates the expression. lookup returns a column's value in the row
// under test; an unknown column makes its term false.
func (e *Expression) Eval(lookup func(column string) (string, bool)) bool {
	result := e.Terms[0].eval(lookup)
	for i, op := range e.Logic {
		next := e.Terms[i+1].eval(lookup)
		if op == LogicAND {
			result = result && next
		} else {
			result = result || next
		}
	}
	return result
}

// splitLogic breaks src into alternating term and operator tokens. AND/OR
// are only recognised as whole words outside quotes.
func splitLogic(src string) []string {
	var (
		tokens []string
		word   strings.Builder
		term   strings.Builder
		quote  rune
	)
	flushWord := func() {
		w := word.String()
		word.Reset()
		if w == "" {
			return
		}
		if up := strings.ToUpper(w); up == "AND" || up == "OR" {
			tokens = append(tokens, strings.TrimSpace(term.String()), up)
			term.Reset()
			return
		}
		term.WriteString(w)
		term.WriteByte(' ')
	}
	for _, r := range src {
		switch {
		case quote != 0:
			word.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			word.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flushWord()
		default:
			word.WriteRune(r)
		}
	}
	flushWord()
	return append(tokens, strings.TrimSpace(term.String()))
}

func parseComparison(s string) (Comparison, error) {
	s = strings.TrimSpace(s)
	for _, o := range operators {
		idx := strings.Index(s, o.symbol)
		if idx <= 0 {
			continue
		}
		return Comparison{
			Column:   strings.TrimSpace(s[:idx]),
			Operator: o.op,
			Value:    unquote(strings.TrimSpace(s[idx+len(o.symbol):])),
		}, nil
	}
	return Comparison{}, fmt.Errorf("term %q has no column and operator", s)
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func (c Comparison) eval(lookup func(string) (string, bool)) bool {
	cell, ok := lookup(c.Column)
	if !ok {
		return false
	}
	switch c.Operator {
	case OpEqual:
		return strings.EqualFold(cell, c.Value)
	case OpNotEqual:
		return !strings.EqualFold(cell, c.Value)
	case OpContains:
		return strings.Contains(strings.ToLower(cell), strings.ToLower(c.Value))
	}
	return compareOrdered(cell, c.Value, c.Operator)
}

// compareOrdered compares numerically when both sides parse as numbers and
// case-insensitively as strings otherwise.
func compareOrdered(cell, value string, op CompOp) bool {
	var cmp int
	a, errA := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	b, errB := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if errA == nil && errB == nil {
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	} else {
		cmp = strings.Compare(strings.ToLower(cell), strings.ToLower(value))
	}
	switch op {
	case OpGreater:
		return cmp > 0
	case OpLess:
		return cmp < 0
	case OpGreaterEqual:
		return cmp >= 0
	case OpLessEqual:
		return cmp <= 0
	}
	return false
}
