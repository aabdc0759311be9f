// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package binio

import (
	"fmt"
	"strings"
)

// Shape is the list of extents of a row-major array. An empty
// (zero-length, non-nil) shape denotes a bare scalar. A nil Shape
// passed as an expectation means "unconstrained".
type Shape []int

// Elements returns the total number of elements an array of this
// shape holds (the product of the extents). A scalar shape yields 1.
func (s Shape) Elements() int {
	total := 1
	for _, extent := range s {
		total *= extent
	}
	return total
}

// Equal reports whether two shapes have identical rank and extents.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i, extent := range s {
		if other[i] != extent {
			return false
		}
	}
	return true
}

// String renders the shape in tuple notation, e.g. "(5, 17)". Used in
// error messages.
func (s Shape) String() string {
	if len(s) == 0 {
		return "()"
	}
	parts := make([]string, len(s))
	for i, extent := range s {
		parts[i] = fmt.Sprintf("%d", extent)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// matches reports whether a realized shape satisfies an expected one.
// A nil expectation accepts anything, and a bare scalar satisfies the
// one-element vector shape (1,).
func (s Shape) matches(expected Shape) bool {
	if expected == nil {
		return true
	}
	if len(s) == 0 && len(expected) == 1 && expected[0] == 1 {
		return true
	}
	return s.Equal(expected)
}
