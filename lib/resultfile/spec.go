// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package resultfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/branchedflowsim/flowsim/lib/binio"
	"github.com/branchedflowsim/flowsim/lib/grid"
)

// ErrInvalidSpec indicates schema misuse: an unset field type, a
// count referencing a field that has not been read, a derived type
// resolving to nothing, or a count kind the field's type cannot use.
var ErrInvalidSpec = errors.New("invalid field spec")

// ErrMissingField indicates that a value required by a FieldSpec is
// absent from the data map: an attribute that was never set, or a
// scratch value the write hook failed to inject.
var ErrMissingField = errors.New("missing field")

// Data is the value map a container reads into and writes from, keyed
// by field name. See the package documentation for the closed set of
// value types.
type Data map[string]any

// DataType describes how one field's payload is encoded on the wire.
// The implementations are [Uint], [Float], [GridType], and record
// types built with [Record].
type DataType interface {
	String() string
	read(r io.Reader, count countValue) (any, error)
	write(w io.Writer, value any, count countValue) error
}

// The primitive field types.
var (
	// Uint encodes unsigned 64-bit integers.
	Uint DataType = uintType{}
	// Float encodes 64-bit floats.
	Float DataType = floatType{}
	// GridType encodes self-describing grids; a count above one
	// encodes that many concatenated grids.
	GridType DataType = gridType{}
)

// TypeSpec is a field's type: either a static [DataType], or a
// function deriving the type from fields read earlier in the same
// container.
type TypeSpec struct {
	static DataType
	derive func(Data) (DataType, error)
}

// Static declares a fixed field type.
func Static(t DataType) TypeSpec { return TypeSpec{static: t} }

// Derived declares a field type computed from prior data. The
// function must return a usable DataType; returning nil is a schema
// error at read/write time.
func Derived(fn func(Data) (DataType, error)) TypeSpec { return TypeSpec{derive: fn} }

func (t TypeSpec) valid() bool { return t.static != nil || t.derive != nil }

// resolve turns the type spec into a concrete DataType, invoking the
// derivation function against prior data when the type is dynamic.
func (t TypeSpec) resolve(data Data) (DataType, error) {
	if t.static != nil {
		return t.static, nil
	}
	if t.derive == nil {
		return nil, fmt.Errorf("%w: no type specified", ErrInvalidSpec)
	}
	resolved, err := t.derive(data)
	if err != nil {
		return nil, fmt.Errorf("deriving field type: %w", err)
	}
	if resolved == nil {
		return nil, fmt.Errorf("%w: derived type is invalid", ErrInvalidSpec)
	}
	return resolved, nil
}

func (t TypeSpec) String() string {
	if t.static != nil {
		return t.static.String()
	}
	if t.derive != nil {
		return "derived"
	}
	return "unset"
}

// Count declares how many elements a field holds: a fixed integer, a
// reference to a previously read field, or a tuple of these giving a
// multi-dimensional shape.
type Count interface {
	resolve(data Data) (countValue, error)
	String() string
}

// countValue is a resolved count. shape is non-nil exactly when the
// count was declared as a tuple; a plain integer count keeps arrays
// one-dimensional and collapses a single element to a bare scalar.
type countValue struct {
	n     int
	shape binio.Shape
}

// readCount returns the argument for binio's shaped read functions.
func (c countValue) readCount() any {
	if c.shape != nil {
		return c.shape
	}
	return c.n
}

// writeShape returns the shape a written value must realize.
func (c countValue) writeShape() binio.Shape {
	if c.shape != nil {
		return c.shape
	}
	return binio.Shape{c.n}
}

type fixedCount int

// Fixed declares a literal element count.
func Fixed(n int) Count { return fixedCount(n) }

func (c fixedCount) resolve(Data) (countValue, error) {
	if c < 0 {
		return countValue{}, fmt.Errorf("%w: negative element count %d", ErrInvalidSpec, int(c))
	}
	return countValue{n: int(c)}, nil
}

func (c fixedCount) String() string { return fmt.Sprintf("%d", int(c)) }

type refCount string

// Ref declares an element count read from a previously declared
// field. The referenced field must appear earlier in spec order.
func Ref(name string) Count { return refCount(name) }

func (c refCount) resolve(data Data) (countValue, error) {
	value, ok := data[string(c)]
	if !ok {
		return countValue{}, fmt.Errorf("%w: element count %q is not present in prior data",
			ErrInvalidSpec, string(c))
	}
	switch v := value.(type) {
	case uint64:
		// Counts come from the stream; a corrupt length field must not
		// turn into a negative slice length.
		if v > math.MaxInt {
			return countValue{}, fmt.Errorf("%w: element count %q resolves to %d, beyond any readable payload",
				ErrInvalidSpec, string(c), v)
		}
		return countValue{n: int(v)}, nil
	case int:
		if v < 0 {
			return countValue{}, fmt.Errorf("%w: element count %q resolves to %d",
				ErrInvalidSpec, string(c), v)
		}
		return countValue{n: v}, nil
	default:
		return countValue{}, fmt.Errorf("%w: element count %q resolves to %T, not an integer",
			ErrInvalidSpec, string(c), value)
	}
}

func (c refCount) String() string { return fmt.Sprintf("ref(%s)", string(c)) }

type tupleCount []Count

// Tuple declares a multi-dimensional count; each component must
// resolve to a plain integer.
func Tuple(counts ...Count) Count { return tupleCount(counts) }

func (c tupleCount) resolve(data Data) (countValue, error) {
	shape := make(binio.Shape, len(c))
	total := 1
	for i, component := range c {
		resolved, err := component.resolve(data)
		if err != nil {
			return countValue{}, err
		}
		if resolved.shape != nil {
			return countValue{}, fmt.Errorf("%w: nested count tuples are not supported", ErrInvalidSpec)
		}
		if resolved.n != 0 && total > math.MaxInt/resolved.n {
			return countValue{}, fmt.Errorf("%w: count tuple %s overflows", ErrInvalidSpec, c)
		}
		shape[i] = resolved.n
		total *= resolved.n
	}
	return countValue{n: total, shape: shape}, nil
}

func (c tupleCount) String() string {
	parts := make([]string, len(c))
	for i, component := range c {
		parts[i] = component.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FieldSpec declares one named entry of a result container: its
// encoding, its element count, whether it is an attribute of the
// container (as opposed to a write-time scratch value recomputed just
// before serialization), and the reduction operator merging it with
// the same field of a sibling container.
//
// The zero values give the common case: Count nil means one element,
// Scratch false means the field is an attribute, Reduce nil means
// [Equal].
type FieldSpec struct {
	Name    string
	Type    TypeSpec
	Count   Count
	Scratch bool
	Reduce  Reducer
}

// String renders the spec for error messages and logs.
func (s *FieldSpec) String() string {
	count := "1"
	if s.Count != nil {
		count = s.Count.String()
	}
	rendered := fmt.Sprintf("field %q (%s x %s)", s.Name, s.Type, count)
	if s.Scratch {
		rendered += " scratch"
	}
	return rendered
}

// Read resolves the spec's type and count against data (the fields of
// the same container read so far), reads the value from r, and stores
// it into data under the spec's name.
func (s *FieldSpec) Read(r io.Reader, data Data) (any, error) {
	dtype, err := s.Type.resolve(data)
	if err != nil {
		return nil, err
	}
	count, err := s.resolveCount(data)
	if err != nil {
		return nil, err
	}
	value, err := dtype.read(r, count)
	if err != nil {
		return nil, err
	}
	data[s.Name] = value
	return value, nil
}

// Write resolves the spec's type and count against data and writes
// the value stored under the spec's name to w. The value must be
// present in data.
func (s *FieldSpec) Write(w io.Writer, data Data) error {
	dtype, err := s.Type.resolve(data)
	if err != nil {
		return err
	}
	count, err := s.resolveCount(data)
	if err != nil {
		return err
	}
	value, ok := data[s.Name]
	if !ok {
		return fmt.Errorf("%w: %q has no value to write", ErrMissingField, s.Name)
	}
	return dtype.write(w, value, count)
}

func (s *FieldSpec) resolveCount(data Data) (countValue, error) {
	if s.Count == nil {
		return countValue{n: 1}, nil
	}
	return s.Count.resolve(data)
}

// uintType encodes unsigned 64-bit integers via lib/binio.

type uintType struct{}

func (uintType) String() string { return "uint" }

func (uintType) read(r io.Reader, count countValue) (any, error) {
	return binio.ReadUintValue(r, count.readCount())
}

func (uintType) write(w io.Writer, value any, count countValue) error {
	return binio.WriteUints(w, value, count.writeShape())
}

// floatType encodes 64-bit floats via lib/binio.

type floatType struct{}

func (floatType) String() string { return "float" }

func (floatType) read(r io.Reader, count countValue) (any, error) {
	return binio.ReadFloatValue(r, count.readCount())
}

func (floatType) write(w io.Writer, value any, count countValue) error {
	return binio.WriteFloats(w, value, count.writeShape())
}

// gridType encodes one grid, or a sequence of concatenated grids for
// counts above one.

type gridType struct{}

func (gridType) String() string { return "grid" }

func (gridType) read(r io.Reader, count countValue) (any, error) {
	if count.shape != nil {
		return nil, fmt.Errorf("%w: grid fields take a plain integer count, not a shape", ErrInvalidSpec)
	}
	if count.n == 1 {
		return grid.Read(r)
	}
	return grid.ReadN(r, count.n)
}

func (gridType) write(w io.Writer, value any, count countValue) error {
	if count.shape != nil {
		return fmt.Errorf("%w: grid fields take a plain integer count, not a shape", ErrInvalidSpec)
	}
	if count.n == 1 {
		g, ok := value.(*grid.Grid)
		if !ok {
			return fmt.Errorf("%w: grid field holds %T", ErrInvalidSpec, value)
		}
		return grid.Write(w, g)
	}
	grids, ok := value.([]*grid.Grid)
	if !ok {
		return fmt.Errorf("%w: grid sequence field holds %T", ErrInvalidSpec, value)
	}
	if len(grids) != count.n {
		return fmt.Errorf("%w: grid sequence has %d grids but the count resolves to %d",
			ErrInvalidSpec, len(grids), count.n)
	}
	for i, g := range grids {
		if err := grid.Write(w, g); err != nil {
			return fmt.Errorf("writing grid %d of %d: %w", i+1, len(grids), err)
		}
	}
	return nil
}
