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
	"fmt"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"curator/datatable"
)

// dataTypeOf maps an Arrow type onto the datatable type system. Types with
// no direct counterpart are carried as strings.
func dataTypeOf(dt arrow.DataType) datatable.DataType {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return datatable.TypeInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return datatable.TypeFloat
	case arrow.BOOL:
		return datatable.TypeBool
	default:
		return datatable.TypeString
	}
}

// valueAt reads position pos of col as a datatable value of type dt.
func valueAt(col arrow.Array, pos int, dt datatable.DataType) datatable.Value {
	if col.IsNull(pos) {
		return datatable.NewNullValue(dt)
	}
	switch c := col.(type) {
	case *array.Int8:
		return datatable.NewValue(int64(c.Value(pos)), dt)
	case *array.Int16:
		return datatable.NewValue(int64(c.Value(pos)), dt)
	case *array.Int32:
		return datatable.NewValue(int64(c.Value(pos)), dt)
	case *array.Int64:
		return datatable.NewValue(c.Value(pos), dt)
	case *array.Uint8:
		return datatable.NewValue(int64(c.Value(pos)), dt)
	case *array.Uint16:
		return datatable.NewValue(int64(c.Value(pos)), dt)
	case *array.Uint32:
		return datatable.NewValue(int64(c.Value(pos)), dt)
	case *array.Uint64:
		return datatable.NewValue(int64(c.Value(pos)), dt)
	case *array.Float16:
		return datatable.NewValue(float64(c.Value(pos).Float32()), dt)
	case *array.Float32:
		return datatable.NewValue(float64(c.Value(pos)), dt)
	case *array.Float64:
		return datatable.NewValue(c.Value(pos), dt)
	case *array.Boolean:
		return datatable.NewValue(c.Value(pos), dt)
	}
	return datatable.NewValue(formatArrow(col, pos), dt)
}

// formatArrow renders types without a datatable counterpart as text.
func formatArrow(col arrow.Array, pos int) string {
	switch c := col.(type) {
	case *array.String:
		return c.Value(pos)
	case *array.LargeString:
		return c.Value(pos)
	case *array.Binary:
		return string(c.Value(pos))
	case *array.Date32:
		return c.Value(pos).ToTime().Format("2006-01-02")
	case *array.Date64:
		return c.Value(pos).ToTime().Format("2006-01-02")
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return c.Value(pos).ToTime(unit).Format("2006-01-02 15:04:05.999999999")
	case *array.Decimal128:
		return c.Value(pos).BigInt().String()
	case *array.Struct:
		b, err := array.NewSlice(c, int64(pos), int64(pos+1)).MarshalJSON()
		if err == nil {
			return string(b)
		}
	}
	return col.ValueStr(pos)
}

// arrowType is the Arrow type a datatable column is exported as.
func arrowType(dt datatable.DataType) arrow.DataType {
	switch dt {
	case datatable.TypeInt:
		return arrow.PrimitiveTypes.Int64
	case datatable.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case datatable.TypeBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// ToArrowTable builds an Arrow table from t. The caller releases it.
func ToArrowTable(t *datatable.Table, mem memory.Allocator) (arrow.Table, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	cols := t.Columns()
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c.Name, Type: arrowType(c.Type), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	bldr := array.NewRecordBuilder(mem, schema)
	defer bldr.Release()

	for r := 0; r < t.RowCount(); r++ {
		row, err := t.Row(r)
		if err != nil {
			return nil, err
		}
		for c, v := range row {
			if err := appendValue(bldr.Field(c), v); err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", r, cols[c].Name, err)
			}
		}
	}

	rec := bldr.NewRecord()
	defer rec.Release()
	return array.NewTableFromRecords(schema, []arrow.Record{rec}), nil
}

func appendValue(b array.Builder, v datatable.Value) error {
	if v.IsNull || v.Raw == nil {
		b.AppendNull()
		return nil
	}
	switch fb := b.(type) {
	case *array.Int64Builder:
		n, err := asInt(v)
		if err != nil {
			return err
		}
		fb.Append(n)
	case *array.Float64Builder:
		f, err := asFloat(v)
		if err != nil {
			return err
		}
		fb.Append(f)
	case *array.BooleanBuilder:
		bv, ok := v.Raw.(bool)
		if !ok {
			parsed, err := strconv.ParseBool(v.Formatted)
			if err != nil {
				return fmt.Errorf("%w: %q is not a boolean", datatable.ErrTypeMismatch, v.Formatted)
			}
			bv = parsed
		}
		fb.Append(bv)
	case *array.StringBuilder:
		fb.Append(v.Formatted)
	default:
		return fmt.Errorf("%w: unsupported builder %T", datatable.ErrExportFailed, b)
	}
	return nil
}

func asInt(v datatable.Value) (int64, error) {
	switch n := v.Raw.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	}
	n, err := strconv.ParseInt(v.Formatted, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", datatable.ErrTypeMismatch, v.Formatted)
	}
	return n, nil
}

func asFloat(v datatable.Value) (float64, error) {
	switch n := v.Raw.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	f, err := strconv.ParseFloat(v.Formatted, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", datatable.ErrTypeMismatch, v.Formatted)
	}
	return f, nil
}
