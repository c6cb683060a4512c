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

package filter

import (
	"fmt"
	"strings"

	"curator/datatable"
)

// ContainsFilter accepts rows whose named column's display text contains
// Needle, ignoring case.
type ContainsFilter struct {
	Column string
	Needle string
}

// NewContains returns a ContainsFilter for column with the needle lower-cased.
func NewContains(column, needle string) *ContainsFilter {
	return &ContainsFilter{Column: column, Needle: strings.ToLower(needle)}
}

// Evaluate implements datatable.Filter. A column missing from the row is a
// non-match rather than an error.
func (f *ContainsFilter) Evaluate(row []datatable.Value, columnNames []string) (bool, error) {
	for i, name := range columnNames {
		if name != f.Column {
			continue
		}
		if i >= len(row) {
			return false, nil
		}
		return strings.Contains(strings.ToLower(row[i].Formatted), f.Needle), nil
	}
	return false, nil
}

// Description implements datatable.Filter.
func (f *ContainsFilter) Description() string {
	return fmt.Sprintf("%s ~ %q", f.Column, f.Needle)
}
