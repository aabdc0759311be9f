// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package binio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteUints writes value as unsigned 64-bit integers in native byte
// order. value may be a bare scalar or a shaped array (see
// [ToUintArray] for the accepted Go types). If expected is non-nil,
// the realized shape of value must match it; a bare scalar matches
// the expectation (1,). Negative or fractional inputs fail with
// [ErrValue] before anything is written.
func WriteUints(w io.Writer, value any, expected Shape) error {
	array, err := ToUintArray(value)
	if err != nil {
		return err
	}
	if !array.Shape.matches(expected) {
		return fmt.Errorf("%w: got data with shape %s but expected %s", ErrShape, array.Shape, expected)
	}
	if err := binary.Write(w, binary.NativeEndian, array.Data); err != nil {
		return fmt.Errorf("writing %d uints: %w", len(array.Data), err)
	}
	return nil
}

// WriteFloats writes value as 64-bit floats in native byte order.
// The shape contract is the same as for [WriteUints]. Integer inputs
// that float64 cannot represent exactly fail with [ErrValue].
func WriteFloats(w io.Writer, value any, expected Shape) error {
	array, err := ToFloatArray(value)
	if err != nil {
		return err
	}
	if !array.Shape.matches(expected) {
		return fmt.Errorf("%w: got data with shape %s but expected %s", ErrShape, array.Shape, expected)
	}
	if err := binary.Write(w, binary.NativeEndian, array.Data); err != nil {
		return fmt.Errorf("writing %d floats: %w", len(array.Data), err)
	}
	return nil
}

// WriteUint writes a single unsigned 64-bit integer.
func WriteUint(w io.Writer, value uint64) error {
	return WriteUints(w, value, nil)
}

// WriteFloat writes a single 64-bit float.
func WriteFloat(w io.Writer, value float64) error {
	return WriteFloats(w, value, nil)
}
