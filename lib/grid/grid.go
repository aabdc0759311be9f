// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/branchedflowsim/flowsim/lib/binio"
)

// ErrCorrupt indicates damaged or truncated grid data: a missing tag
// byte, an element count that contradicts the extents, or a payload
// shorter than declared.
var ErrCorrupt = errors.New("corrupt grid data")

// ErrUnsupportedType indicates a dtype outside the five the format
// defines. Distinct from [ErrCorrupt]: the data may be a well-formed
// grid of a type this implementation does not handle.
var ErrUnsupportedType = errors.New("unsupported grid type")

// DType identifies the element type of a grid. The values are the
// single-letter type codes stored on the wire.
type DType byte

const (
	Float64 DType = 'd'
	Float32 DType = 'f'
	Uint64  DType = 'm'
	Uint32  DType = 'j'
	Int64   DType = 'l'
)

// String returns the Go-style name of the dtype, or the raw letter
// for unknown codes.
func (d DType) String() string {
	switch d {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case Uint64:
		return "uint64"
	case Uint32:
		return "uint32"
	case Int64:
		return "int64"
	default:
		return fmt.Sprintf("%q", byte(d))
	}
}

func (d DType) valid() bool {
	switch d {
	case Float64, Float32, Uint64, Uint32, Int64:
		return true
	}
	return false
}

// Grid is an N-dimensional numeric array with an explicit element
// type, as stored in flowsim files. The payload is a flat row-major
// slice whose element type corresponds to the dtype.
type Grid struct {
	dtype   DType
	extents binio.Shape
	data    any
}

// New builds a grid from a dtype, extents, and a flat row-major
// payload. data must be the slice type matching dtype ([]float64 for
// [Float64] and so on) with exactly as many elements as the extents
// imply.
func New(dtype DType, extents binio.Shape, data any) (*Grid, error) {
	if !dtype.valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, dtype)
	}
	length, ok := payloadLength(dtype, data)
	if !ok {
		return nil, fmt.Errorf("%w: payload %T does not match dtype %s", ErrUnsupportedType, data, dtype)
	}
	if length != extents.Elements() {
		return nil, fmt.Errorf("grid payload has %d elements but extents %s imply %d",
			length, extents, extents.Elements())
	}
	return &Grid{dtype: dtype, extents: append(binio.Shape(nil), extents...), data: data}, nil
}

// NewFloat64 builds a float64 grid. This is the common case: every
// grid the potential writer emits is float64.
func NewFloat64(extents binio.Shape, data []float64) (*Grid, error) {
	return New(Float64, extents, data)
}

// ZerosFloat64 builds a zero-filled float64 grid with the given
// extents.
func ZerosFloat64(extents binio.Shape) *Grid {
	g, err := NewFloat64(extents, make([]float64, extents.Elements()))
	if err != nil {
		// Elements() and the allocation agree by construction.
		panic("grid: " + err.Error())
	}
	return g
}

// DType returns the element type of the grid.
func (g *Grid) DType() DType { return g.dtype }

// Extents returns the per-axis sizes of the grid. The returned slice
// is shared; callers must not modify it.
func (g *Grid) Extents() binio.Shape { return g.extents }

// Elements returns the total element count.
func (g *Grid) Elements() int { return g.extents.Elements() }

// Data returns the flat row-major payload as the slice type matching
// the dtype.
func (g *Grid) Data() any { return g.data }

// Float64s returns the payload converted to float64, regardless of
// the stored dtype. Integer values beyond float64 precision fail.
func (g *Grid) Float64s() ([]float64, error) {
	switch data := g.data.(type) {
	case []float64:
		return data, nil
	case []float32:
		converted := make([]float64, len(data))
		for i, v := range data {
			converted[i] = float64(v)
		}
		return converted, nil
	case []uint64:
		converted := make([]float64, len(data))
		for i, v := range data {
			if uint64(float64(v)) != v {
				return nil, fmt.Errorf("%w: element %d loses precision as float64", binio.ErrValue, v)
			}
			converted[i] = float64(v)
		}
		return converted, nil
	case []uint32:
		converted := make([]float64, len(data))
		for i, v := range data {
			converted[i] = float64(v)
		}
		return converted, nil
	case []int64:
		converted := make([]float64, len(data))
		for i, v := range data {
			if int64(float64(v)) != v {
				return nil, fmt.Errorf("%w: element %d loses precision as float64", binio.ErrValue, v)
			}
			converted[i] = float64(v)
		}
		return converted, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, g.dtype)
	}
}

// Equal reports whether two grids agree in dtype, extents, and every
// payload element.
func (g *Grid) Equal(other *Grid) bool {
	if g == nil || other == nil {
		return g == other
	}
	return g.dtype == other.dtype &&
		g.extents.Equal(other.extents) &&
		reflect.DeepEqual(g.data, other.data)
}

// Add sums other into g elementwise. Both grids must share dtype and
// extents. This is the merge step for count-type observables from
// repeated stochastic runs.
func (g *Grid) Add(other *Grid) error {
	if g.dtype != other.dtype {
		return fmt.Errorf("adding grids: dtype %s does not match %s", other.dtype, g.dtype)
	}
	if !g.extents.Equal(other.extents) {
		return fmt.Errorf("adding grids: extents %s do not match %s", other.extents, g.extents)
	}
	switch data := g.data.(type) {
	case []float64:
		for i, v := range other.data.([]float64) {
			data[i] += v
		}
	case []float32:
		for i, v := range other.data.([]float32) {
			data[i] += v
		}
	case []uint64:
		for i, v := range other.data.([]uint64) {
			data[i] += v
		}
	case []uint32:
		for i, v := range other.data.([]uint32) {
			data[i] += v
		}
	case []int64:
		for i, v := range other.data.([]int64) {
			data[i] += v
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, g.dtype)
	}
	return nil
}

// payloadLength returns the element count of data if its slice type
// matches dtype.
func payloadLength(dtype DType, data any) (int, bool) {
	switch d := data.(type) {
	case []float64:
		return len(d), dtype == Float64
	case []float32:
		return len(d), dtype == Float32
	case []uint64:
		return len(d), dtype == Uint64
	case []uint32:
		return len(d), dtype == Uint32
	case []int64:
		return len(d), dtype == Int64
	default:
		return 0, false
	}
}
