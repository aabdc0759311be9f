// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package resultfile

import (
	"errors"
	"fmt"

	"github.com/branchedflowsim/flowsim/lib/binio"
	"github.com/branchedflowsim/flowsim/lib/grid"
)

// ErrCannotReduce indicates a reduction conflict: an [Equal] field
// whose operands differ, a [Fail] field that was asked to merge, or
// operands whose shapes or types do not line up.
var ErrCannotReduce = errors.New("cannot reduce")

// Reducer is a binary merge operator combining the values of one
// field from two independently computed containers of the same
// schema. Reducers may modify their first operand and return it.
type Reducer func(a, b any) (any, error)

// canonicalValue maps convenience Go types onto the container value
// set, so that user-built value maps (plain ints and slices) reduce
// and compare uniformly with values parsed from files.
func canonicalValue(v any) any {
	switch value := v.(type) {
	case int:
		if value >= 0 {
			return uint64(value)
		}
	case []float64:
		return binio.FloatArray{Shape: binio.Shape{len(value)}, Data: value}
	case []uint64:
		return binio.UintArray{Shape: binio.Shape{len(value)}, Data: value}
	}
	return v
}

// Equal asserts that the two values are structurally identical and
// returns the first. This is the default reducer: configuration
// fields (dimensions, bin positions, sample times) must agree between
// runs for a merge to make sense.
func Equal(a, b any) (any, error) {
	if !valueEqual(a, b) {
		return nil, fmt.Errorf("%w: values are not equal", ErrCannotReduce)
	}
	return a, nil
}

// Add sums the two values elementwise. Scalars add directly; arrays
// and grids must match in shape. The first operand is modified in
// place where possible and returned.
func Add(a, b any) (any, error) {
	a, b = canonicalValue(a), canonicalValue(b)
	switch left := a.(type) {
	case uint64:
		right, ok := b.(uint64)
		if !ok {
			return nil, reduceTypeError(a, b)
		}
		return left + right, nil
	case float64:
		right, ok := b.(float64)
		if !ok {
			return nil, reduceTypeError(a, b)
		}
		return left + right, nil
	case binio.UintArray:
		right, ok := b.(binio.UintArray)
		if !ok {
			return nil, reduceTypeError(a, b)
		}
		if !left.Shape.Equal(right.Shape) {
			return nil, fmt.Errorf("%w: adding shapes %s and %s", ErrCannotReduce, left.Shape, right.Shape)
		}
		for i, v := range right.Data {
			left.Data[i] += v
		}
		return left, nil
	case binio.FloatArray:
		right, ok := b.(binio.FloatArray)
		if !ok {
			return nil, reduceTypeError(a, b)
		}
		if !left.Shape.Equal(right.Shape) {
			return nil, fmt.Errorf("%w: adding shapes %s and %s", ErrCannotReduce, left.Shape, right.Shape)
		}
		for i, v := range right.Data {
			left.Data[i] += v
		}
		return left, nil
	case *grid.Grid:
		right, ok := b.(*grid.Grid)
		if !ok {
			return nil, reduceTypeError(a, b)
		}
		if err := left.Add(right); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCannotReduce, err)
		}
		return left, nil
	case []*grid.Grid:
		right, ok := b.([]*grid.Grid)
		if !ok {
			return nil, reduceTypeError(a, b)
		}
		if len(left) != len(right) {
			return nil, fmt.Errorf("%w: adding grid sequences of length %d and %d",
				ErrCannotReduce, len(left), len(right))
		}
		for i := range left {
			if err := left[i].Add(right[i]); err != nil {
				return nil, fmt.Errorf("%w: grid %d: %v", ErrCannotReduce, i, err)
			}
		}
		return left, nil
	default:
		return nil, fmt.Errorf("%w: cannot add values of type %T", ErrCannotReduce, a)
	}
}

// Concat appends the second value to the first along the leading
// axis. Defined for shaped arrays, record sequences, and grid
// sequences.
func Concat(a, b any) (any, error) {
	a, b = canonicalValue(a), canonicalValue(b)
	switch left := a.(type) {
	case binio.UintArray:
		right, ok := b.(binio.UintArray)
		if !ok {
			return nil, reduceTypeError(a, b)
		}
		shape, err := concatShape(left.Shape, right.Shape)
		if err != nil {
			return nil, err
		}
		return binio.UintArray{Shape: shape, Data: append(left.Data, right.Data...)}, nil
	case binio.FloatArray:
		right, ok := b.(binio.FloatArray)
		if !ok {
			return nil, reduceTypeError(a, b)
		}
		shape, err := concatShape(left.Shape, right.Shape)
		if err != nil {
			return nil, err
		}
		return binio.FloatArray{Shape: shape, Data: append(left.Data, right.Data...)}, nil
	case *RecordArray:
		right, ok := b.(*RecordArray)
		if !ok {
			return nil, reduceTypeError(a, b)
		}
		if !left.Type.equalType(right.Type) {
			return nil, fmt.Errorf("%w: concatenating records of type %s and %s",
				ErrCannotReduce, left.Type, right.Type)
		}
		return &RecordArray{Type: left.Type, Rows: append(left.Rows, right.Rows...)}, nil
	case []*grid.Grid:
		right, ok := b.([]*grid.Grid)
		if !ok {
			return nil, reduceTypeError(a, b)
		}
		return append(left, right...), nil
	default:
		return nil, fmt.Errorf("%w: cannot concatenate values of type %T", ErrCannotReduce, a)
	}
}

// Fail marks a field as non-mergeable: any reduction attempt errors.
func Fail(a, b any) (any, error) {
	return nil, fmt.Errorf("%w: field is not mergeable", ErrCannotReduce)
}

// concatShape joins two shapes along the leading axis. Ranks and
// trailing extents must agree.
func concatShape(a, b binio.Shape) (binio.Shape, error) {
	if len(a) == 0 || len(a) != len(b) {
		return nil, fmt.Errorf("%w: concatenating shapes %s and %s", ErrCannotReduce, a, b)
	}
	for i := 1; i < len(a); i++ {
		if a[i] != b[i] {
			return nil, fmt.Errorf("%w: concatenating shapes %s and %s", ErrCannotReduce, a, b)
		}
	}
	joined := append(binio.Shape{a[0] + b[0]}, a[1:]...)
	return joined, nil
}

func reduceTypeError(a, b any) error {
	return fmt.Errorf("%w: operand types %T and %T do not match", ErrCannotReduce, a, b)
}

// valueEqual is structural equality over the container value set.
func valueEqual(a, b any) bool {
	a, b = canonicalValue(a), canonicalValue(b)
	switch left := a.(type) {
	case uint64:
		right, ok := b.(uint64)
		return ok && left == right
	case float64:
		right, ok := b.(float64)
		return ok && left == right
	case binio.UintArray:
		right, ok := b.(binio.UintArray)
		return ok && left.Equal(right)
	case binio.FloatArray:
		right, ok := b.(binio.FloatArray)
		return ok && left.Equal(right)
	case *grid.Grid:
		right, ok := b.(*grid.Grid)
		return ok && left.Equal(right)
	case []*grid.Grid:
		right, ok := b.([]*grid.Grid)
		if !ok || len(left) != len(right) {
			return false
		}
		for i := range left {
			if !left[i].Equal(right[i]) {
				return false
			}
		}
		return true
	case *RecordArray:
		right, ok := b.(*RecordArray)
		return ok && left.Equal(right)
	default:
		return false
	}
}
