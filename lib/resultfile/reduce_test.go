// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package resultfile

import (
	"errors"
	"testing"

	"github.com/branchedflowsim/flowsim/lib/binio"
	"github.com/branchedflowsim/flowsim/lib/grid"
)

func TestAddScalars(t *testing.T) {
	sum, err := Add(uint64(3), uint64(4))
	if err != nil {
		t.Fatalf("Add(uint64): %v", err)
	}
	if sum != uint64(7) {
		t.Fatalf("Add(3, 4) = %v, want 7", sum)
	}

	fsum, err := Add(1.5, 2.25)
	if err != nil {
		t.Fatalf("Add(float64): %v", err)
	}
	if fsum != 3.75 {
		t.Fatalf("Add(1.5, 2.25) = %v, want 3.75", fsum)
	}
}

func TestAddArrays(t *testing.T) {
	a := binio.FloatArray{Shape: binio.Shape{3}, Data: []float64{1, 2, 3}}
	b := binio.FloatArray{Shape: binio.Shape{3}, Data: []float64{3, 2, 1}}
	sum, err := Add(a, b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	want := binio.FloatArray{Shape: binio.Shape{3}, Data: []float64{4, 4, 4}}
	if !valueEqual(sum, want) {
		t.Fatalf("Add = %v, want %v", sum, want)
	}
}

func TestAddPlainSlices(t *testing.T) {
	// Values placed into a data map by hand use plain Go slices; the
	// reducers must treat them like parsed arrays.
	sum, err := Add([]float64{1, 2}, binio.FloatArray{Shape: binio.Shape{2}, Data: []float64{10, 20}})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !valueEqual(sum, []float64{11, 22}) {
		t.Fatalf("Add = %v, want [11 22]", sum)
	}
}

func TestAddShapeMismatch(t *testing.T) {
	a := binio.UintArray{Shape: binio.Shape{2}, Data: []uint64{1, 2}}
	b := binio.UintArray{Shape: binio.Shape{3}, Data: []uint64{1, 2, 3}}
	if _, err := Add(a, b); !errors.Is(err, ErrCannotReduce) {
		t.Fatalf("Add with mismatched shapes: got %v, want ErrCannotReduce", err)
	}
}

func TestAddTypeMismatch(t *testing.T) {
	if _, err := Add(uint64(1), 2.0); !errors.Is(err, ErrCannotReduce) {
		t.Fatalf("Add(uint64, float64): got %v, want ErrCannotReduce", err)
	}
}

func TestAddGrids(t *testing.T) {
	a := mustGrid(t, binio.Shape{2, 2}, []float64{1, 2, 3, 4})
	b := mustGrid(t, binio.Shape{2, 2}, []float64{4, 3, 2, 1})
	sum, err := Add(a, b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	want := mustGrid(t, binio.Shape{2, 2}, []float64{5, 5, 5, 5})
	if !sum.(*grid.Grid).Equal(want) {
		t.Fatalf("Add produced wrong grid")
	}

	c := mustGrid(t, binio.Shape{4}, []float64{0, 0, 0, 0})
	if _, err := Add(want, c); !errors.Is(err, ErrCannotReduce) {
		t.Fatalf("Add with mismatched extents: got %v, want ErrCannotReduce", err)
	}
}

func TestConcatArrays(t *testing.T) {
	a := binio.FloatArray{Shape: binio.Shape{2, 3}, Data: []float64{1, 2, 3, 4, 5, 6}}
	b := binio.FloatArray{Shape: binio.Shape{1, 3}, Data: []float64{7, 8, 9}}
	joined, err := Concat(a, b)
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	want := binio.FloatArray{Shape: binio.Shape{3, 3}, Data: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}}
	if !valueEqual(joined, want) {
		t.Fatalf("Concat = %v, want %v", joined, want)
	}
}

func TestConcatTrailingExtentMismatch(t *testing.T) {
	a := binio.FloatArray{Shape: binio.Shape{2, 3}, Data: make([]float64, 6)}
	b := binio.FloatArray{Shape: binio.Shape{2, 4}, Data: make([]float64, 8)}
	if _, err := Concat(a, b); !errors.Is(err, ErrCannotReduce) {
		t.Fatalf("Concat with mismatched trailing extents: got %v, want ErrCannotReduce", err)
	}
}

func TestConcatRecords(t *testing.T) {
	rtype := Record(
		RecordField{Name: "id", Kind: ElemUint64},
		RecordField{Name: "t", Kind: ElemFloat64},
	)
	a := &RecordArray{Type: rtype, Rows: []Row{{"id": uint64(1), "t": 0.5}}}
	b := &RecordArray{Type: rtype, Rows: []Row{{"id": uint64(2), "t": 1.5}}}
	joined, err := Concat(a, b)
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	array := joined.(*RecordArray)
	if array.Len() != 2 {
		t.Fatalf("Concat produced %d rows, want 2", array.Len())
	}
	if array.Rows[1]["id"] != uint64(2) {
		t.Fatalf("second row id = %v, want 2", array.Rows[1]["id"])
	}

	other := Record(RecordField{Name: "id", Kind: ElemUint8})
	c := &RecordArray{Type: other, Rows: []Row{{"id": uint64(3)}}}
	if _, err := Concat(a, c); !errors.Is(err, ErrCannotReduce) {
		t.Fatalf("Concat with mismatched record types: got %v, want ErrCannotReduce", err)
	}
}

func TestEqualReducer(t *testing.T) {
	value, err := Equal(uint64(2), uint64(2))
	if err != nil {
		t.Fatalf("Equal on equal values: %v", err)
	}
	if value != uint64(2) {
		t.Fatalf("Equal returned %v, want 2", value)
	}
	if _, err := Equal(uint64(2), uint64(3)); !errors.Is(err, ErrCannotReduce) {
		t.Fatalf("Equal on differing values: got %v, want ErrCannotReduce", err)
	}
	// int and uint64 spell the same value.
	if _, err := Equal(2, uint64(2)); err != nil {
		t.Fatalf("Equal(int, uint64): %v", err)
	}
}

func TestFailReducer(t *testing.T) {
	if _, err := Fail(uint64(1), uint64(1)); !errors.Is(err, ErrCannotReduce) {
		t.Fatalf("Fail: got %v, want ErrCannotReduce", err)
	}
}

func mustGrid(t *testing.T, extents binio.Shape, data []float64) *grid.Grid {
	t.Helper()
	g, err := grid.NewFloat64(extents, data)
	if err != nil {
		t.Fatalf("building grid: %v", err)
	}
	return g
}
