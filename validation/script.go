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
	"bytes"
	"fmt"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"curator/cellstate"
)

// ScriptRule runs a Go function interpreted by yaegi. The script is the body
// of a package after its package clause and must define
//
//	func Check(value string) string
//
// returning an empty string for acceptable values and a message otherwise.
type ScriptRule struct {
	Column   string
	Severity cellstate.Status

	mu     sync.Mutex
	check  func(string) string
	output bytes.Buffer
}

// NewScriptRule compiles src.
func NewScriptRule(column, src string, severity cellstate.Status) (*ScriptRule, error) {
	r := &ScriptRule{Column: column, Severity: severity}

	i := interp.New(interp.Options{
		Stdout: &r.output,
		Stderr: &r.output,
	})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("loading stdlib: %w", err)
	}
	if _, err := i.Eval("package rule\n\n" + src); err != nil {
		return nil, fmt.Errorf("script rule on %s: %w", column, err)
	}
	v, err := i.Eval("rule.Check")
	if err != nil {
		return nil, fmt.Errorf("script rule on %s: %w", column, err)
	}
	check, ok := v.Interface().(func(string) string)
	if !ok {
		return nil, fmt.Errorf("script rule on %s: Check must be func(string) string, got %s", column, v.Type())
	}
	r.check = check
	return r, nil
}

func (r *ScriptRule) Columns() []string { return []string{r.Column} }

func (r *ScriptRule) Check(in Input) (st cellstate.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if p := recover(); p != nil {
			st = failure(r.Severity, fmt.Sprintf("script error: %v", p))
		}
	}()
	if msg := r.check(in.Value); msg != "" {
		return failure(r.Severity, msg)
	}
	return valid
}
