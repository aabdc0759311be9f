// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/branchedflowsim/flowsim/lib/binio"
)

// gridTag is the one-byte marker that opens every grid on the wire.
const gridTag = 'g'

// maxRank bounds the rank a stored grid may declare. Real grids are
// low-dimensional; a rank beyond this is a corrupt length field, not a
// bigger simulation.
const maxRank = 16

// payloadBlockElements caps how many elements one payload allocation
// covers; see readElements.
const payloadBlockElements = 1 << 20

// Write serializes g: tag, rank, extents, dtype letter + NUL,
// redundant element count, row-major payload.
func Write(w io.Writer, g *Grid) error {
	if !g.dtype.valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, g.dtype)
	}
	if _, err := w.Write([]byte{gridTag}); err != nil {
		return fmt.Errorf("writing grid tag: %w", err)
	}
	if err := binio.WriteUint(w, uint64(len(g.extents))); err != nil {
		return fmt.Errorf("writing grid rank: %w", err)
	}
	if err := binio.WriteUints(w, []int(g.extents), nil); err != nil {
		return fmt.Errorf("writing grid extents: %w", err)
	}
	if _, err := w.Write([]byte{byte(g.dtype), 0}); err != nil {
		return fmt.Errorf("writing grid dtype: %w", err)
	}
	if err := binio.WriteUint(w, uint64(g.Elements())); err != nil {
		return fmt.Errorf("writing grid element count: %w", err)
	}
	if err := binary.Write(w, binary.NativeEndian, g.data); err != nil {
		return fmt.Errorf("writing grid payload: %w", err)
	}
	return nil
}

// Read parses a single grid from the current stream position.
func Read(r io.Reader) (*Grid, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return nil, fmt.Errorf("%w: reading grid tag: %v", ErrCorrupt, err)
	}
	if tag[0] != gridTag {
		return nil, fmt.Errorf("%w: stream does not contain a grid at the current position (tag %q)",
			ErrCorrupt, tag[0])
	}

	rank, err := binio.ReadUint(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading grid rank: %v", ErrCorrupt, err)
	}
	if rank > maxRank {
		return nil, fmt.Errorf("%w: grid rank %d exceeds the maximum of %d", ErrCorrupt, rank, maxRank)
	}
	rawExtents, err := binio.ReadUints(r, int(rank))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %d grid extents: %v", ErrCorrupt, rank, err)
	}
	extents := make(binio.Shape, rank)
	elements := uint64(1)
	for i, extent := range rawExtents {
		if extent > math.MaxInt || (extent != 0 && elements > math.MaxInt/extent) {
			return nil, fmt.Errorf("%w: extents %v overflow the element count", ErrCorrupt, rawExtents)
		}
		elements *= extent
		extents[i] = int(extent)
	}

	dtype, err := readDType(r)
	if err != nil {
		return nil, err
	}

	declared, err := binio.ReadUint(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading grid element count: %v", ErrCorrupt, err)
	}
	if declared != elements {
		return nil, fmt.Errorf("%w: element count %d is incompatible with extents %s",
			ErrCorrupt, declared, extents)
	}

	data, err := readPayload(r, dtype, int(declared))
	if err != nil {
		return nil, err
	}
	return &Grid{dtype: dtype, extents: extents, data: data}, nil
}

// ReadN parses count concatenated grids. Each grid is parsed before
// the next slot is grown, so a corrupt count fails on the first
// missing grid.
func ReadN(r io.Reader, count int) ([]*Grid, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative grid count %d", ErrCorrupt, count)
	}
	grids := make([]*Grid, 0, min(count, 1024))
	for i := 0; i < count; i++ {
		g, err := Read(r)
		if err != nil {
			return nil, fmt.Errorf("reading grid %d of %d: %w", i+1, count, err)
		}
		grids = append(grids, g)
	}
	return grids, nil
}

// readDType consumes the NUL-terminated dtype letter. The type string
// on the wire is open-ended, so this reads until the terminator and
// rejects anything that is not a known single letter.
func readDType(r io.Reader) (DType, error) {
	var code []byte
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, fmt.Errorf("%w: reading grid dtype: %v", ErrCorrupt, err)
		}
		if b[0] == 0 {
			break
		}
		if !isAlnum(b[0]) {
			return 0, fmt.Errorf("%w: invalid dtype string %q", ErrCorrupt, append(code, b[0]))
		}
		code = append(code, b[0])
	}
	if len(code) != 1 || !DType(code[0]).valid() {
		return 0, fmt.Errorf("%w: dtype %q", ErrUnsupportedType, code)
	}
	return DType(code[0]), nil
}

// readPayload reads count elements of the given dtype.
func readPayload(r io.Reader, dtype DType, count int) (any, error) {
	switch dtype {
	case Float64:
		return readElements[float64](r, dtype, count)
	case Float32:
		return readElements[float32](r, dtype, count)
	case Uint64:
		return readElements[uint64](r, dtype, count)
	case Uint32:
		return readElements[uint32](r, dtype, count)
	case Int64:
		return readElements[int64](r, dtype, count)
	default:
		return nil, fmt.Errorf("%w: dtype %s", ErrUnsupportedType, dtype)
	}
}

// readElements grows the payload one block at a time, so an element
// count the stream cannot back fails on the short read instead of
// allocating the declared size up front.
func readElements[T any](r io.Reader, dtype DType, count int) ([]T, error) {
	values := make([]T, 0, min(count, payloadBlockElements))
	for read := 0; read < count; {
		n := min(count-read, payloadBlockElements)
		values = slices.Grow(values, n)[:read+n]
		if err := binary.Read(r, binary.NativeEndian, values[read:]); err != nil {
			return nil, fmt.Errorf("%w: reading %d %s elements: %v", ErrCorrupt, count, dtype, err)
		}
		read += n
	}
	return values, nil
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
