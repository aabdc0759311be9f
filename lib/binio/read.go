// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package binio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
)

// ReadToEnd is the count value that makes the read functions consume
// the stream to its end instead of a fixed number of elements.
const ReadToEnd = -1

// blockElements caps how many elements a single allocation covers.
// Element counts come from length fields in the stream, so a corrupt
// file can declare an absurd count; growing the result in blocks turns
// that into a short-read error instead of a giant up-front allocation.
const blockElements = 1 << 20

// ReadUint reads a single unsigned 64-bit integer.
func ReadUint(r io.Reader) (uint64, error) {
	var value uint64
	if err := binary.Read(r, binary.NativeEndian, &value); err != nil {
		return 0, fmt.Errorf("reading uint: %w", err)
	}
	return value, nil
}

// ReadFloat reads a single 64-bit float.
func ReadFloat(r io.Reader) (float64, error) {
	var value float64
	if err := binary.Read(r, binary.NativeEndian, &value); err != nil {
		return 0, fmt.Errorf("reading float: %w", err)
	}
	return value, nil
}

// ReadUints reads exactly count unsigned 64-bit integers, or, for
// count == [ReadToEnd], every remaining element of the stream. A
// stream with fewer elements than requested fails.
func ReadUints(r io.Reader, count int) ([]uint64, error) {
	if count == ReadToEnd {
		raw, elements, err := readRemaining(r)
		if err != nil {
			return nil, err
		}
		values := make([]uint64, elements)
		for i := range values {
			values[i] = binary.NativeEndian.Uint64(raw[i*8:])
		}
		return values, nil
	}
	return readBlocks[uint64](r, count, "uints")
}

// ReadFloats reads exactly count 64-bit floats, or, for count ==
// [ReadToEnd], every remaining element of the stream.
func ReadFloats(r io.Reader, count int) ([]float64, error) {
	if count == ReadToEnd {
		raw, elements, err := readRemaining(r)
		if err != nil {
			return nil, err
		}
		values := make([]float64, elements)
		for i := range values {
			values[i] = math.Float64frombits(binary.NativeEndian.Uint64(raw[i*8:]))
		}
		return values, nil
	}
	return readBlocks[float64](r, count, "floats")
}

// readBlocks reads count fixed-width elements, growing the result one
// block at a time.
func readBlocks[T any](r io.Reader, count int, label string) ([]T, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative element count %d", ErrValue, count)
	}
	values := make([]T, 0, min(count, blockElements))
	for read := 0; read < count; {
		n := min(count-read, blockElements)
		values = slices.Grow(values, n)[:read+n]
		if err := binary.Read(r, binary.NativeEndian, values[read:]); err != nil {
			return nil, fmt.Errorf("expected to read %d %s: %w", count, label, err)
		}
		read += n
	}
	return values, nil
}

// ReadUintValue reads unsigned integers according to count. An int
// count reads that many elements, collapsing a single element to a
// bare uint64 (count 1) or consuming the rest of the stream (count
// [ReadToEnd]). A [Shape] count reads the product of its extents and
// returns a [UintArray] carrying that shape.
func ReadUintValue(r io.Reader, count any) (any, error) {
	switch c := count.(type) {
	case int:
		if c == 1 {
			return ReadUint(r)
		}
		values, err := ReadUints(r, c)
		if err != nil {
			return nil, err
		}
		return UintArray{Shape: Shape{len(values)}, Data: values}, nil
	case Shape:
		values, err := ReadUints(r, c.Elements())
		if err != nil {
			return nil, err
		}
		return UintArray{Shape: c, Data: values}, nil
	default:
		return nil, fmt.Errorf("%w: invalid read count %v (%T)", ErrValue, count, count)
	}
}

// ReadFloatValue reads 64-bit floats according to count, with the
// same count semantics as [ReadUintValue].
func ReadFloatValue(r io.Reader, count any) (any, error) {
	switch c := count.(type) {
	case int:
		if c == 1 {
			return ReadFloat(r)
		}
		values, err := ReadFloats(r, c)
		if err != nil {
			return nil, err
		}
		return FloatArray{Shape: Shape{len(values)}, Data: values}, nil
	case Shape:
		values, err := ReadFloats(r, c.Elements())
		if err != nil {
			return nil, err
		}
		return FloatArray{Shape: c, Data: values}, nil
	default:
		return nil, fmt.Errorf("%w: invalid read count %v (%T)", ErrValue, count, count)
	}
}

// readRemaining consumes the stream to its end and verifies that the
// byte count is a whole number of 8-byte elements.
func readRemaining(r io.Reader) ([]byte, int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("reading to end of stream: %w", err)
	}
	if len(raw)%8 != 0 {
		return nil, 0, fmt.Errorf("reading to end of stream: %d trailing bytes are not a whole element: %w",
			len(raw)%8, io.ErrUnexpectedEOF)
	}
	return raw, len(raw) / 8, nil
}
