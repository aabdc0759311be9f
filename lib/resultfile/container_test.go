// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package resultfile

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/branchedflowsim/flowsim/lib/binio"
)

// histogramSchema is a small but representative format: a fixed
// header, an Equal-reduced configuration field, an Add-reduced sample
// count, and a payload whose length depends on a prior field.
func histogramSchema(t *testing.T) *Schema {
	t.Helper()
	schema, err := NewSchema(Schema{
		Name:   "histogram",
		Header: "hist001\n",
		Fields: []FieldSpec{
			{Name: "num_bins", Type: Static(Uint)},
			{Name: "samples", Type: Static(Uint), Reduce: Add},
			{Name: "counts", Type: Static(Float), Count: Ref("num_bins"), Reduce: Add},
		},
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return schema
}

func TestContainerRoundTrip(t *testing.T) {
	schema := histogramSchema(t)
	original, err := schema.FromData(Data{
		"num_bins": 4,
		"samples":  100,
		"counts":   []float64{10, 20, 30, 40},
	})
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}

	var buf bytes.Buffer
	if err := original.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("hist001\n")) {
		t.Fatalf("serialized form does not start with the header: %q", buf.Bytes()[:8])
	}

	parsed, err := schema.FromReader(&buf)
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	for _, name := range []string{"num_bins", "samples", "counts"} {
		want, _ := original.Get(name)
		got, ok := parsed.Get(name)
		if !ok {
			t.Fatalf("parsed container is missing %q", name)
		}
		if !valueEqual(got, want) {
			t.Fatalf("field %q: got %v, want %v", name, got, want)
		}
	}
}

func TestContainerScalarCollapse(t *testing.T) {
	schema := histogramSchema(t)
	container, err := schema.FromData(Data{
		"num_bins": 4,
		"samples":  1,
		"counts":   []float64{0, 0, 0, 0},
	})
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	var buf bytes.Buffer
	if err := container.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	parsed, err := schema.FromReader(&buf)
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	// A count-1 field comes back as a bare scalar, not a length-1 array.
	samples, _ := parsed.Get("samples")
	if _, ok := samples.(uint64); !ok {
		t.Fatalf("samples parsed as %T, want uint64", samples)
	}
}

func TestContainerMissingField(t *testing.T) {
	schema := histogramSchema(t)
	_, err := schema.FromData(Data{"num_bins": 4, "samples": 1})
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("FromData without counts: got %v, want ErrMissingField", err)
	}
}

func TestContainerHeaderMismatch(t *testing.T) {
	schema := histogramSchema(t)
	_, err := schema.FromReader(strings.NewReader("nope001\nxxxxxxxx"))
	if !errors.Is(err, ErrHeaderMismatch) {
		t.Fatalf("FromReader with wrong header: got %v, want ErrHeaderMismatch", err)
	}
}

func TestCorruptCountFieldFails(t *testing.T) {
	schema, err := NewSchema(Schema{
		Name:   "samples",
		Header: "smpl001\n",
		Fields: []FieldSpec{
			{Name: "count", Type: Static(Uint)},
			{Name: "values", Type: Static(Float), Count: Ref("count"), Reduce: Add},
		},
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}

	// Stored counts no stream could back: both must surface as errors,
	// never as a crash on allocation.
	cases := []struct {
		name  string
		count uint64
	}{
		{"beyond int range", 1 << 63},
		{"beyond the stream", 1 << 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			buf.WriteString("smpl001\n")
			if err := binio.WriteUint(&buf, tc.count); err != nil {
				t.Fatalf("WriteUint: %v", err)
			}
			if _, err := schema.FromReader(&buf); err == nil {
				t.Fatal("parsing a corrupt count field succeeded")
			}
		})
	}
}

func TestCorruptRecordCountFails(t *testing.T) {
	schema, err := NewSchema(Schema{
		Name:   "events",
		Header: "evnt001\n",
		Fields: []FieldSpec{
			{Name: "event_count", Type: Static(Uint)},
			{
				Name:   "events",
				Type:   Static(Record(RecordField{Name: "id", Kind: ElemUint64})),
				Count:  Ref("event_count"),
				Reduce: Concat,
			},
		},
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}

	var buf bytes.Buffer
	buf.WriteString("evnt001\n")
	if err := binio.WriteUint(&buf, 1<<62); err != nil {
		t.Fatalf("WriteUint: %v", err)
	}
	if _, err := schema.FromReader(&buf); err == nil {
		t.Fatal("parsing a corrupt record count succeeded")
	}
}

func TestReduceAddsCountedValues(t *testing.T) {
	schema := histogramSchema(t)
	a, err := schema.FromData(Data{"num_bins": 3, "samples": 1, "counts": []float64{1, 2, 3}})
	if err != nil {
		t.Fatalf("FromData(a): %v", err)
	}
	b, err := schema.FromData(Data{"num_bins": 3, "samples": 1, "counts": []float64{3, 2, 1}})
	if err != nil {
		t.Fatalf("FromData(b): %v", err)
	}

	merged, err := a.Reduce(b)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if merged != a {
		t.Fatalf("Reduce must return its receiver")
	}
	counts, _ := merged.Get("counts")
	if !valueEqual(counts, []float64{4, 4, 4}) {
		t.Fatalf("merged counts = %v, want [4 4 4]", counts)
	}
	samples, _ := merged.Get("samples")
	if samples != uint64(2) {
		t.Fatalf("merged samples = %v, want 2", samples)
	}
}

func TestReduceAssociativity(t *testing.T) {
	schema := histogramSchema(t)
	build := func(counts []float64) *Container {
		t.Helper()
		c, err := schema.FromData(Data{"num_bins": 3, "samples": 1, "counts": counts})
		if err != nil {
			t.Fatalf("FromData: %v", err)
		}
		return c
	}

	// (a . b) . c
	left, err := build([]float64{1, 2, 3}).Reduce(build([]float64{10, 20, 30}))
	if err != nil {
		t.Fatalf("Reduce(a, b): %v", err)
	}
	if left, err = left.Reduce(build([]float64{100, 200, 300})); err != nil {
		t.Fatalf("Reduce(ab, c): %v", err)
	}

	// a . (b . c)
	inner, err := build([]float64{10, 20, 30}).Reduce(build([]float64{100, 200, 300}))
	if err != nil {
		t.Fatalf("Reduce(b, c): %v", err)
	}
	right, err := build([]float64{1, 2, 3}).Reduce(inner)
	if err != nil {
		t.Fatalf("Reduce(a, bc): %v", err)
	}

	for _, name := range []string{"samples", "counts"} {
		lv, _ := left.Get(name)
		rv, _ := right.Get(name)
		if !valueEqual(lv, rv) {
			t.Errorf("field %q: left association %v, right association %v", name, lv, rv)
		}
	}
}

func TestReduceNilIdentity(t *testing.T) {
	schema := histogramSchema(t)
	c, err := schema.FromData(Data{"num_bins": 1, "samples": 1, "counts": []float64{1}})
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	merged, err := c.Reduce(nil)
	if err != nil {
		t.Fatalf("Reduce(nil): %v", err)
	}
	if merged != c {
		t.Fatalf("Reduce(nil) must return the receiver unchanged")
	}
}

func TestReduceEqualFieldMismatch(t *testing.T) {
	schema := histogramSchema(t)
	a, _ := schema.FromData(Data{"num_bins": 2, "samples": 1, "counts": []float64{1, 2}})
	b, _ := schema.FromData(Data{"num_bins": 3, "samples": 1, "counts": []float64{1, 2, 3}})
	if _, err := a.Reduce(b); !errors.Is(err, ErrCannotReduce) {
		t.Fatalf("Reduce with differing num_bins: got %v, want ErrCannotReduce", err)
	}
}

func TestReduceSchemaMismatch(t *testing.T) {
	a, _ := histogramSchema(t).FromData(Data{"num_bins": 1, "samples": 1, "counts": []float64{0}})
	b, _ := histogramSchema(t).FromData(Data{"num_bins": 1, "samples": 1, "counts": []float64{0}})
	// Same definition, different schema values: containers are only
	// mergeable within one schema instance.
	if _, err := a.Reduce(b); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("Reduce across schema instances: got %v, want ErrSchemaMismatch", err)
	}
}

func TestScratchFieldRecomputedOnWrite(t *testing.T) {
	schema, err := NewSchema(Schema{
		Name:   "events",
		Header: "evnt001\n",
		Fields: []FieldSpec{
			{Name: "event_count", Type: Static(Uint), Scratch: true},
			{
				Name:   "events",
				Type:   Static(Record(RecordField{Name: "id", Kind: ElemUint64})),
				Count:  Ref("event_count"),
				Reduce: Concat,
			},
		},
		PrepareWrite: func(c *Container, data Data) error {
			events, ok := data["events"].(*RecordArray)
			if !ok {
				return fmt.Errorf("events value is %T", data["events"])
			}
			data["event_count"] = uint64(events.Len())
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}

	rtype := Record(RecordField{Name: "id", Kind: ElemUint64})
	container, err := schema.FromData(Data{
		"events": &RecordArray{Type: rtype, Rows: []Row{{"id": uint64(7)}, {"id": uint64(8)}}},
	})
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	if _, ok := container.Get("event_count"); ok {
		t.Fatalf("scratch field must not be ingested as an attribute")
	}

	var buf bytes.Buffer
	if err := container.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	parsed, err := schema.FromReader(&buf)
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	events, _ := parsed.Get("events")
	array, ok := events.(*RecordArray)
	if !ok || array.Len() != 2 {
		t.Fatalf("parsed events = %v, want 2 records", events)
	}
	if array.Rows[0]["id"] != uint64(7) || array.Rows[1]["id"] != uint64(8) {
		t.Fatalf("parsed record ids = %v, %v; want 7, 8", array.Rows[0]["id"], array.Rows[1]["id"])
	}
}

func TestDerivedTypeAndTupleCount(t *testing.T) {
	schema, err := NewSchema(Schema{
		Name:   "matrix",
		Header: "mtrx001\n",
		Fields: []FieldSpec{
			{Name: "rows", Type: Static(Uint)},
			{Name: "cols", Type: Static(Uint)},
			{
				Name: "cells",
				Type: Derived(func(data Data) (DataType, error) {
					// The element type itself can hinge on prior data;
					// here it is static in practice but exercises the path.
					return Float, nil
				}),
				Count:  Tuple(Ref("rows"), Ref("cols")),
				Reduce: Add,
			},
		},
	})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}

	container, err := schema.FromData(Data{
		"rows":  2,
		"cols":  3,
		"cells": binio.FloatArray{Shape: binio.Shape{2, 3}, Data: []float64{1, 2, 3, 4, 5, 6}},
	})
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	var buf bytes.Buffer
	if err := container.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	parsed, err := schema.FromReader(&buf)
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	cells, _ := parsed.Get("cells")
	array, ok := cells.(binio.FloatArray)
	if !ok {
		t.Fatalf("cells parsed as %T, want FloatArray", cells)
	}
	if !array.Shape.Equal(binio.Shape{2, 3}) {
		t.Fatalf("cells shape = %s, want (2, 3)", array.Shape)
	}
}

func TestNewSchemaRejectsBadDefinitions(t *testing.T) {
	cases := []struct {
		name   string
		fields []FieldSpec
	}{
		{"unnamed field", []FieldSpec{{Type: Static(Uint)}}},
		{"duplicate field", []FieldSpec{
			{Name: "x", Type: Static(Uint)},
			{Name: "x", Type: Static(Float)},
		}},
		{"missing type", []FieldSpec{{Name: "x"}}},
	}
	for _, tc := range cases {
		if _, err := NewSchema(Schema{Name: "bad", Fields: tc.fields}); !errors.Is(err, ErrInvalidSpec) {
			t.Errorf("%s: got %v, want ErrInvalidSpec", tc.name, err)
		}
	}
}

func TestContainerFileRoundTrip(t *testing.T) {
	schema := histogramSchema(t)
	container, err := schema.FromData(Data{
		"num_bins": 2,
		"samples":  5,
		"counts":   []float64{1.25, 2.5},
	})
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}

	dir := t.TempDir()
	if err := container.WriteFile(dir); err == nil {
		t.Fatalf("WriteFile to a directory must fail for a format without a default file name")
	}

	path := dir + "/histogram.dat"
	if err := container.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	parsed, err := schema.FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	counts, _ := parsed.Get("counts")
	if !valueEqual(counts, []float64{1.25, 2.5}) {
		t.Fatalf("counts = %v, want [1.25 2.5]", counts)
	}
}
