package tensor

import "fmt"

// FromSlice creates a RawTensor from a Go slice. The slice is copied.
//
// Example:
//
//	t, err := tensor.FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}, CPU)
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), device)
	if err != nil {
		return nil, err
	}

	switch v := any(data).(type) {
	case []float32:
		copy(raw.AsFloat32(), v)
	case []float64:
		copy(raw.AsFloat64(), v)
	case []int8:
		copy(raw.AsInt8(), v)
	case []int16:
		copy(raw.AsInt16(), v)
	case []int32:
		copy(raw.AsInt32(), v)
	case []int64:
		copy(raw.AsInt64(), v)
	case []uint8:
		copy(raw.AsUint8(), v)
	case []bool:
		copy(raw.AsBool(), v)
	}
	return raw, nil
}

// FromFloat64s creates a tensor of the given storage kind from float64 values.
func FromFloat64s(vals []float64, shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(vals) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(vals))
	}
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	raw.SetFloat64s(vals)
	return raw, nil
}

// Int32Vector creates a rank-1 Int32 tensor. Shapes and indices travel as such vectors.
func Int32Vector(vals []int, device Device) *RawTensor {
	n := len(vals)
	shape := Shape{n}
	if n == 0 {
		panic("int32 vector must not be empty")
	}
	raw, err := NewRaw(shape, Int32, device)
	if err != nil {
		panic(err)
	}
	dst := raw.AsInt32()
	for i, v := range vals {
		dst[i] = int32(v)
	}
	return raw
}

// Scalar creates a rank-0 tensor holding v converted to dtype.
// v may be any Go integer, float or bool.
func Scalar(v any, dtype DataType, device Device) (*RawTensor, error) {
	raw, err := NewRaw(Shape{}, dtype, device)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case bool:
		raw.SetBools([]bool{x})
	case int:
		raw.SetInt64s([]int64{int64(x)})
	case int8:
		raw.SetInt64s([]int64{int64(x)})
	case int16:
		raw.SetInt64s([]int64{int64(x)})
	case int32:
		raw.SetInt64s([]int64{int64(x)})
	case int64:
		raw.SetInt64s([]int64{x})
	case uint8:
		raw.SetInt64s([]int64{int64(x)})
	case float32:
		raw.SetFloat64s([]float64{float64(x)})
	case float64:
		raw.SetFloat64s([]float64{x})
	default:
		return nil, fmt.Errorf("%w: cannot build a scalar from %T", ErrUnsupportedDType, v)
	}
	return raw, nil
}

// ScalarKind returns the natural storage kind for a Go scalar value.
func ScalarKind(v any) (DataType, bool) {
	switch v.(type) {
	case bool:
		return Bool, true
	case int, int64:
		return Int64, true
	case int8:
		return Int8, true
	case int16:
		return Int16, true
	case int32:
		return Int32, true
	case uint8:
		return Uint8, true
	case float32:
		return Float32, true
	case float64:
		return Float64, true
	}
	return 0, false
}
