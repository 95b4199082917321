package arrowhost

import (
	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"github.com/ducminhle1904/indicator-engine/internal/errors"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

const component = "ArrowHost"

func typeError(operation, name string, arr arrow.Array, want string) error {
	got := "<nil>"
	if arr != nil {
		got = arr.DataType().String()
	}
	return errors.NewValidationError(component, operation, "unexpected column type").
		WithContext("column", name).
		WithContext("want", want).
		WithContext("got", got)
}

// floatColumn reads a Float64 array; nulls become missing cells, NaN stays a value
func floatColumn(operation, name string, arr arrow.Array) ([]types.NullFloat64, error) {
	switch a := arr.(type) {
	case *array.Float64:
		out := make([]types.NullFloat64, a.Len())
		for i := range out {
			if a.IsValid(i) {
				out[i] = types.Float(a.Value(i))
			}
		}
		return out, nil
	case *array.Float32:
		out := make([]types.NullFloat64, a.Len())
		for i := range out {
			if a.IsValid(i) {
				out[i] = types.Float(float64(a.Value(i)))
			}
		}
		return out, nil
	default:
		return nil, typeError(operation, name, arr, "float64")
	}
}

// boolColumn reads a Boolean array; nulls read as false
func boolColumn(operation, name string, arr arrow.Array) ([]bool, error) {
	a, ok := arr.(*array.Boolean)
	if !ok {
		return nil, typeError(operation, name, arr, "bool")
	}
	out := make([]bool, a.Len())
	for i := range out {
		out[i] = a.IsValid(i) && a.Value(i)
	}
	return out, nil
}

// indexColumn reads an integer array along with its validity
func indexColumn(operation, name string, arr arrow.Array) ([]int64, []bool, error) {
	var (
		values []int64
		valid  []bool
	)
	switch a := arr.(type) {
	case *array.Int64:
		values, valid = make([]int64, a.Len()), make([]bool, a.Len())
		for i := range values {
			valid[i] = a.IsValid(i)
			values[i] = a.Value(i)
		}
	case *array.Int32:
		values, valid = make([]int64, a.Len()), make([]bool, a.Len())
		for i := range values {
			valid[i] = a.IsValid(i)
			values[i] = int64(a.Value(i))
		}
	case *array.Uint32:
		values, valid = make([]int64, a.Len()), make([]bool, a.Len())
		for i := range values {
			valid[i] = a.IsValid(i)
			values[i] = int64(a.Value(i))
		}
	default:
		return nil, nil, typeError(operation, name, arr, "int64")
	}
	return values, valid, nil
}

func buildFloat64(mem memory.Allocator, col []types.NullFloat64) *array.Float64 {
	values := make([]float64, len(col))
	valid := make([]bool, len(col))
	for i, v := range col {
		values[i], valid[i] = v.Float64, v.Valid
	}
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.AppendValues(values, valid)
	return b.NewFloat64Array()
}

func buildInt32(mem memory.Allocator, col []types.NullInt32) *array.Int32 {
	values := make([]int32, len(col))
	valid := make([]bool, len(col))
	for i, v := range col {
		values[i], valid[i] = v.Int32, v.Valid
	}
	b := array.NewInt32Builder(mem)
	defer b.Release()
	b.AppendValues(values, valid)
	return b.NewInt32Array()
}

func buildInt64(mem memory.Allocator, col []int64) *array.Int64 {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.AppendValues(col, nil)
	return b.NewInt64Array()
}

func buildBool(mem memory.Allocator, col []bool) *array.Boolean {
	b := array.NewBooleanBuilder(mem)
	defer b.Release()
	b.AppendValues(col, nil)
	return b.NewBooleanArray()
}

// buildStruct assembles named children into a struct array and drops the local references
func buildStruct(names []string, children ...arrow.Array) (*array.Struct, error) {
	defer func() {
		for _, c := range children {
			c.Release()
		}
	}()
	out, err := array.NewStructArray(children, names)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorCategoryValidation, component, "buildStruct")
	}
	return out, nil
}

// FloatColumn converts a Float64 array into a nullable column
func FloatColumn(arr arrow.Array) ([]types.NullFloat64, error) {
	return floatColumn("FloatColumn", "values", arr)
}

// Int32Column converts an Int32 array into a nullable column
func Int32Column(arr arrow.Array) ([]types.NullInt32, error) {
	a, ok := arr.(*array.Int32)
	if !ok {
		return nil, typeError("Int32Column", "values", arr, "int32")
	}
	out := make([]types.NullInt32, a.Len())
	for i := range out {
		if a.IsValid(i) {
			out[i] = types.Int32(a.Value(i))
		}
	}
	return out, nil
}

// BoolColumn converts a Boolean array, reading nulls as false
func BoolColumn(arr arrow.Array) ([]bool, error) {
	return boolColumn("BoolColumn", "values", arr)
}

// Int64Column converts an Int64 array; nulls are rejected
func Int64Column(arr arrow.Array) ([]int64, error) {
	values, valid, err := indexColumn("Int64Column", "values", arr)
	if err != nil {
		return nil, err
	}
	for i, ok := range valid {
		if !ok {
			return nil, errors.NewValidationError(component, "Int64Column", "unexpected null").WithContext("index", i)
		}
	}
	return values, nil
}
