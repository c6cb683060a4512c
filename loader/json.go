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

package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"curator/datatable"
)

// ErrEmptyJSON is returned for JSON documents without records.
var ErrEmptyJSON = errors.New("JSON file is empty or has no records")

// LoadJSON reads a JSON array of objects, or a single object, from path.
func LoadJSON(path string) (*datatable.Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	return ParseJSON(content)
}

// ParseJSON builds a table from JSON records. Columns appear in the order
// keys are first seen. A column whose values are all integers is TypeInt,
// all numbers TypeFloat, all booleans TypeBool; anything else is text.
func ParseJSON(content []byte) (*datatable.Table, error) {
	var raw []json.RawMessage
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		raw = []json.RawMessage{trimmed}
	} else if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyJSON
	}

	var names []string
	index := make(map[string]int)
	records := make([]map[string]any, len(raw))
	for i, msg := range raw {
		keys, obj, err := decodeObject(msg)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		for _, k := range keys {
			if _, ok := index[k]; !ok {
				index[k] = len(names)
				names = append(names, k)
			}
		}
		records[i] = obj
	}

	columns := make([]datatable.Column, len(names))
	for c, name := range names {
		columns[c] = datatable.Column{Name: name, Type: inferJSONType(records, name)}
	}
	rows := make([][]datatable.Value, len(records))
	for r, obj := range records {
		rows[r] = make([]datatable.Value, len(columns))
		for c, col := range columns {
			rows[r][c] = jsonValue(obj[col.Name], col.Type)
		}
	}
	return datatable.NewTable(columns, rows)
}

// decodeObject returns the keys of one object in document order.
func decodeObject(msg json.RawMessage) ([]string, map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected an object")
	}
	var keys []string
	obj := make(map[string]any)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := obj[key]; !dup {
			keys = append(keys, key)
		}
		obj[key] = v
	}
	return keys, obj, nil
}

func inferJSONType(records []map[string]any, name string) datatable.DataType {
	var ints, floats, bools, others int
	for _, obj := range records {
		switch v := obj[name].(type) {
		case nil:
		case json.Number:
			if _, err := v.Int64(); err == nil {
				ints++
			} else {
				floats++
			}
		case bool:
			bools++
		default:
			others++
		}
	}
	switch {
	case others > 0, bools > 0 && ints+floats > 0:
		return datatable.TypeString
	case bools > 0:
		return datatable.TypeBool
	case floats > 0:
		return datatable.TypeFloat
	case ints > 0:
		return datatable.TypeInt
	}
	return datatable.TypeString
}

func jsonValue(v any, dt datatable.DataType) datatable.Value {
	if v == nil {
		return datatable.NewNullValue(dt)
	}
	switch dt {
	case datatable.TypeInt:
		n, _ := v.(json.Number).Int64()
		return datatable.NewValue(n, dt)
	case datatable.TypeFloat:
		f, _ := v.(json.Number).Float64()
		return datatable.NewValue(f, dt)
	case datatable.TypeBool:
		return datatable.NewValue(v.(bool), dt)
	}
	switch t := v.(type) {
	case string:
		return datatable.NewValue(t, dt)
	case json.Number:
		return datatable.NewValue(t.String(), dt)
	case bool:
		return datatable.NewValue(fmt.Sprintf("%v", t), dt)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return datatable.NewValue(fmt.Sprintf("%v", v), dt)
	}
	return datatable.NewValue(strings.TrimSpace(string(b)), dt)
}
