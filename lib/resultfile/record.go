// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package resultfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/branchedflowsim/flowsim/lib/binio"
)

// ElemKind is the element type of one record member.
type ElemKind uint8

const (
	ElemUint8 ElemKind = iota
	ElemUint64
	ElemFloat64
)

func (k ElemKind) String() string {
	switch k {
	case ElemUint8:
		return "uint8"
	case ElemUint64:
		return "uint64"
	case ElemFloat64:
		return "float64"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// RecordField is one member of a structured record: a name, an
// element kind, and an optional fixed shape (nil for scalars). Shaped
// members are restricted to uint64 and float64 elements.
type RecordField struct {
	Name  string
	Kind  ElemKind
	Shape binio.Shape
}

// RecordType describes a packed structured record: members laid out
// back to back, in order, with no padding. Trace observers write
// per-event records this way (caustic events, trajectory samples),
// with member shapes that depend on the simulation dimension.
type RecordType struct {
	fields []RecordField
}

// Record builds a record DataType from its members.
func Record(fields ...RecordField) *RecordType {
	return &RecordType{fields: fields}
}

// Fields returns the record members in wire order.
func (t *RecordType) Fields() []RecordField { return t.fields }

func (t *RecordType) String() string {
	parts := make([]string, len(t.fields))
	for i, field := range t.fields {
		parts[i] = field.Name + ":" + field.Kind.String()
		if field.Shape != nil {
			parts[i] += field.Shape.String()
		}
	}
	return "record(" + strings.Join(parts, ", ") + ")"
}

// equalType reports whether two record types have identical members.
// Derived types are constructed anew for every container read, so
// merging compares structure, not identity.
func (t *RecordType) equalType(other *RecordType) bool {
	if len(t.fields) != len(other.fields) {
		return false
	}
	for i, field := range t.fields {
		peer := other.fields[i]
		if field.Name != peer.Name || field.Kind != peer.Kind || !field.Shape.Equal(peer.Shape) {
			return false
		}
	}
	return true
}

// Row is one record of a RecordArray, keyed by member name. Scalar
// members are uint64 or float64 (uint8 members widen to uint64);
// shaped members are binio arrays.
type Row map[string]any

// RecordArray is a sequence of structured records of one type.
type RecordArray struct {
	Type *RecordType
	Rows []Row
}

// Len returns the number of records.
func (a *RecordArray) Len() int { return len(a.Rows) }

// Equal reports whether two record arrays have the same type and the
// same rows.
func (a *RecordArray) Equal(other *RecordArray) bool {
	if !a.Type.equalType(other.Type) || len(a.Rows) != len(other.Rows) {
		return false
	}
	for i, row := range a.Rows {
		for _, field := range a.Type.fields {
			if !valueEqual(row[field.Name], other.Rows[i][field.Name]) {
				return false
			}
		}
	}
	return true
}

// read parses count.n records. Record fields take plain integer
// counts only. Rows are appended one at a time, so a corrupt count
// fails on the first missing record instead of allocating the declared
// size up front.
func (t *RecordType) read(r io.Reader, count countValue) (any, error) {
	if count.shape != nil {
		return nil, fmt.Errorf("%w: record fields take a plain integer count, not a shape", ErrInvalidSpec)
	}
	if count.n < 0 {
		return nil, fmt.Errorf("%w: negative record count %d", ErrInvalidSpec, count.n)
	}
	rows := make([]Row, 0, min(count.n, 1024))
	for i := 0; i < count.n; i++ {
		row, err := t.readRow(r)
		if err != nil {
			return nil, fmt.Errorf("reading record %d of %d: %w", i+1, count.n, err)
		}
		rows = append(rows, row)
	}
	return &RecordArray{Type: t, Rows: rows}, nil
}

func (t *RecordType) readRow(r io.Reader) (Row, error) {
	row := make(Row, len(t.fields))
	for _, field := range t.fields {
		value, err := t.readMember(r, field)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", field.Name, err)
		}
		row[field.Name] = value
	}
	return row, nil
}

func (t *RecordType) readMember(r io.Reader, field RecordField) (any, error) {
	if field.Shape == nil {
		switch field.Kind {
		case ElemUint8:
			var b [1]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return nil, err
			}
			return uint64(b[0]), nil
		case ElemUint64:
			return binio.ReadUint(r)
		case ElemFloat64:
			return binio.ReadFloat(r)
		}
		return nil, fmt.Errorf("%w: record member kind %s", ErrInvalidSpec, field.Kind)
	}

	switch field.Kind {
	case ElemUint64:
		return binio.ReadUintValue(r, field.Shape)
	case ElemFloat64:
		return binio.ReadFloatValue(r, field.Shape)
	default:
		return nil, fmt.Errorf("%w: shaped record members must be uint64 or float64, not %s",
			ErrInvalidSpec, field.Kind)
	}
}

// write serializes a *RecordArray whose type matches t and whose
// length matches the resolved count.
func (t *RecordType) write(w io.Writer, value any, count countValue) error {
	if count.shape != nil {
		return fmt.Errorf("%w: record fields take a plain integer count, not a shape", ErrInvalidSpec)
	}
	array, ok := value.(*RecordArray)
	if !ok {
		return fmt.Errorf("%w: record field holds %T", ErrInvalidSpec, value)
	}
	if !t.equalType(array.Type) {
		return fmt.Errorf("%w: record value type %s does not match field type %s",
			ErrInvalidSpec, array.Type, t)
	}
	if len(array.Rows) != count.n {
		return fmt.Errorf("%w: record sequence has %d rows but the count resolves to %d",
			ErrInvalidSpec, len(array.Rows), count.n)
	}
	for i, row := range array.Rows {
		if err := t.writeRow(w, row); err != nil {
			return fmt.Errorf("writing record %d of %d: %w", i+1, len(array.Rows), err)
		}
	}
	return nil
}

func (t *RecordType) writeRow(w io.Writer, row Row) error {
	for _, field := range t.fields {
		value, ok := row[field.Name]
		if !ok {
			return fmt.Errorf("%w: record member %q", ErrMissingField, field.Name)
		}
		if err := t.writeMember(w, field, value); err != nil {
			return fmt.Errorf("member %q: %w", field.Name, err)
		}
	}
	return nil
}

func (t *RecordType) writeMember(w io.Writer, field RecordField, value any) error {
	if field.Shape == nil {
		switch field.Kind {
		case ElemUint8:
			v, ok := value.(uint64)
			if !ok || v > 0xff {
				return fmt.Errorf("%w: %v does not fit a uint8 member", binio.ErrValue, value)
			}
			_, err := w.Write([]byte{byte(v)})
			return err
		case ElemUint64:
			return binio.WriteUints(w, value, binio.Shape{1})
		case ElemFloat64:
			return binio.WriteFloats(w, value, binio.Shape{1})
		}
		return fmt.Errorf("%w: record member kind %s", ErrInvalidSpec, field.Kind)
	}

	switch field.Kind {
	case ElemUint64:
		return binio.WriteUints(w, value, field.Shape)
	case ElemFloat64:
		return binio.WriteFloats(w, value, field.Shape)
	default:
		return fmt.Errorf("%w: shaped record members must be uint64 or float64, not %s",
			ErrInvalidSpec, field.Kind)
	}
}
