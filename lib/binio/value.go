// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package binio

import (
	"errors"
	"fmt"
	"math"
)

// ErrValue indicates that a value cannot be converted losslessly to
// the requested primitive type: a negative or fractional value written
// as an unsigned integer, an integer beyond float64 precision, or a Go
// type outside the supported value set.
var ErrValue = errors.New("invalid value")

// ErrShape indicates that a value's realized shape differs from the
// shape the caller declared.
var ErrShape = errors.New("shape mismatch")

// UintArray is a shaped row-major array of unsigned 64-bit integers.
type UintArray struct {
	Shape Shape
	Data  []uint64
}

// FloatArray is a shaped row-major array of 64-bit floats.
type FloatArray struct {
	Shape Shape
	Data  []float64
}

// Equal reports whether two arrays have the same shape and contents.
func (a UintArray) Equal(other UintArray) bool {
	if !a.Shape.Equal(other.Shape) || len(a.Data) != len(other.Data) {
		return false
	}
	for i, v := range a.Data {
		if other.Data[i] != v {
			return false
		}
	}
	return true
}

// Equal reports whether two arrays have the same shape and contents.
// Float comparison is exact; this is for verifying round-trips, not
// for numeric tolerance checks.
func (a FloatArray) Equal(other FloatArray) bool {
	if !a.Shape.Equal(other.Shape) || len(a.Data) != len(other.Data) {
		return false
	}
	for i, v := range a.Data {
		if other.Data[i] != v {
			return false
		}
	}
	return true
}

// ToUintArray converts a supported value to a UintArray. Scalars
// convert to an array with the empty (scalar) shape. Signed and float
// inputs are verified: negative values and fractional values are
// rejected with [ErrValue].
//
// Supported inputs: uint64, uint, int, int64, float64, []uint64,
// []int, []float64, UintArray, FloatArray.
func ToUintArray(value any) (UintArray, error) {
	switch v := value.(type) {
	case UintArray:
		return v, nil
	case uint64:
		return UintArray{Shape: Shape{}, Data: []uint64{v}}, nil
	case uint:
		return UintArray{Shape: Shape{}, Data: []uint64{uint64(v)}}, nil
	case int:
		if v < 0 {
			return UintArray{}, fmt.Errorf("%w: negative integer %d written as unsigned", ErrValue, v)
		}
		return UintArray{Shape: Shape{}, Data: []uint64{uint64(v)}}, nil
	case int64:
		if v < 0 {
			return UintArray{}, fmt.Errorf("%w: negative integer %d written as unsigned", ErrValue, v)
		}
		return UintArray{Shape: Shape{}, Data: []uint64{uint64(v)}}, nil
	case float64:
		converted, err := floatToUint(v)
		if err != nil {
			return UintArray{}, err
		}
		return UintArray{Shape: Shape{}, Data: []uint64{converted}}, nil
	case []uint64:
		return UintArray{Shape: Shape{len(v)}, Data: v}, nil
	case []int:
		data := make([]uint64, len(v))
		for i, element := range v {
			if element < 0 {
				return UintArray{}, fmt.Errorf("%w: negative integer %d written as unsigned", ErrValue, element)
			}
			data[i] = uint64(element)
		}
		return UintArray{Shape: Shape{len(v)}, Data: data}, nil
	case []float64:
		data := make([]uint64, len(v))
		for i, element := range v {
			converted, err := floatToUint(element)
			if err != nil {
				return UintArray{}, err
			}
			data[i] = converted
		}
		return UintArray{Shape: Shape{len(v)}, Data: data}, nil
	case FloatArray:
		data := make([]uint64, len(v.Data))
		for i, element := range v.Data {
			converted, err := floatToUint(element)
			if err != nil {
				return UintArray{}, err
			}
			data[i] = converted
		}
		return UintArray{Shape: v.Shape, Data: data}, nil
	default:
		return UintArray{}, fmt.Errorf("%w: cannot write %T as unsigned integers", ErrValue, value)
	}
}

// ToFloatArray converts a supported value to a FloatArray. Integer
// inputs beyond 2^53 that would round during the conversion are
// rejected with [ErrValue].
//
// Supported inputs: float64, int, int64, uint64, []float64, []int,
// []uint64, FloatArray, UintArray.
func ToFloatArray(value any) (FloatArray, error) {
	switch v := value.(type) {
	case FloatArray:
		return v, nil
	case float64:
		return FloatArray{Shape: Shape{}, Data: []float64{v}}, nil
	case int:
		converted, err := intToFloat(int64(v))
		if err != nil {
			return FloatArray{}, err
		}
		return FloatArray{Shape: Shape{}, Data: []float64{converted}}, nil
	case int64:
		converted, err := intToFloat(v)
		if err != nil {
			return FloatArray{}, err
		}
		return FloatArray{Shape: Shape{}, Data: []float64{converted}}, nil
	case uint64:
		converted, err := uintToFloat(v)
		if err != nil {
			return FloatArray{}, err
		}
		return FloatArray{Shape: Shape{}, Data: []float64{converted}}, nil
	case []float64:
		return FloatArray{Shape: Shape{len(v)}, Data: v}, nil
	case []int:
		data := make([]float64, len(v))
		for i, element := range v {
			converted, err := intToFloat(int64(element))
			if err != nil {
				return FloatArray{}, err
			}
			data[i] = converted
		}
		return FloatArray{Shape: Shape{len(v)}, Data: data}, nil
	case []uint64:
		data := make([]float64, len(v))
		for i, element := range v {
			converted, err := uintToFloat(element)
			if err != nil {
				return FloatArray{}, err
			}
			data[i] = converted
		}
		return FloatArray{Shape: Shape{len(v)}, Data: data}, nil
	case UintArray:
		data := make([]float64, len(v.Data))
		for i, element := range v.Data {
			converted, err := uintToFloat(element)
			if err != nil {
				return FloatArray{}, err
			}
			data[i] = converted
		}
		return FloatArray{Shape: v.Shape, Data: data}, nil
	default:
		return FloatArray{}, fmt.Errorf("%w: cannot write %T as floats", ErrValue, value)
	}
}

// floatToUint converts a float64 to uint64, rejecting negative,
// fractional, and out-of-range values.
func floatToUint(v float64) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: negative value %g written as unsigned", ErrValue, v)
	}
	if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: non-integral value %g written as unsigned", ErrValue, v)
	}
	if v >= float64(math.MaxUint64) {
		return 0, fmt.Errorf("%w: value %g overflows uint64", ErrValue, v)
	}
	return uint64(v), nil
}

// intToFloat converts an int64 to float64, rejecting values that the
// conversion would round.
func intToFloat(v int64) (float64, error) {
	converted := float64(v)
	if int64(converted) != v {
		return 0, fmt.Errorf("%w: integer %d loses precision as float64", ErrValue, v)
	}
	return converted, nil
}

// uintToFloat converts a uint64 to float64, rejecting values that the
// conversion would round.
func uintToFloat(v uint64) (float64, error) {
	converted := float64(v)
	if converted >= float64(math.MaxUint64) || uint64(converted) != v {
		return 0, fmt.Errorf("%w: integer %d loses precision as float64", ErrValue, v)
	}
	return converted, nil
}
