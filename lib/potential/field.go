// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package potential

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/branchedflowsim/flowsim/lib/binio"
	"github.com/branchedflowsim/flowsim/lib/grid"
)

// Field is a single physical scalar field together with its
// precomputed spatial partial derivatives, each stored as a grid over
// the same extents. A derivative is addressed by one order per axis:
// for a two-dimensional field V, index (1, 0) is dV/dx and (0, 2) is
// the second derivative along y. The all-zeros index is the field
// itself.
type Field struct {
	extents binio.Shape
	grids   map[string]derivEntry
}

type derivEntry struct {
	index []int
	grid  *grid.Grid
}

// NewField returns an empty field over the given extents.
func NewField(extents binio.Shape) *Field {
	return &Field{
		extents: append(binio.Shape(nil), extents...),
		grids:   make(map[string]derivEntry),
	}
}

// Extents returns the per-axis sizes every grid of this field has.
func (f *Field) Extents() binio.Shape { return f.extents }

// Dimension returns the number of axes.
func (f *Field) Dimension() int { return len(f.extents) }

// Derivatives returns the derivative indices present in the field,
// in lexicographic order.
func (f *Field) Derivatives() [][]int {
	indices := make([][]int, 0, len(f.grids))
	for _, entry := range f.grids {
		indices = append(indices, entry.index)
	}
	sort.Slice(indices, func(i, j int) bool { return lessIndex(indices[i], indices[j]) })
	return indices
}

// Grid returns the field itself, i.e. the zeroth derivative.
func (f *Field) Grid() (*grid.Grid, error) {
	return f.PartialDerivative(make([]int, f.Dimension())...)
}

// PartialDerivative returns the grid for one derivative index. The
// index must name one order per axis.
func (f *Field) PartialDerivative(index ...int) (*grid.Grid, error) {
	if len(index) != f.Dimension() {
		return nil, fmt.Errorf("derivative index %v has %d entries, field has %d axes",
			index, len(index), f.Dimension())
	}
	entry, ok := f.grids[derivKey(index)]
	if !ok {
		return nil, fmt.Errorf("field has no derivative %v", index)
	}
	return entry.grid, nil
}

// SetPartialDerivative stores the grid for one derivative index. The
// grid's extents must match the field's.
func (f *Field) SetPartialDerivative(g *grid.Grid, index ...int) error {
	if len(index) != f.Dimension() {
		return fmt.Errorf("derivative index %v has %d entries, field has %d axes",
			index, len(index), f.Dimension())
	}
	for _, order := range index {
		if order < 0 {
			return fmt.Errorf("derivative index %v has a negative order", index)
		}
	}
	if !g.Extents().Equal(f.extents) {
		return fmt.Errorf("grid extents %s do not match field extents %s", g.Extents(), f.extents)
	}
	f.grids[derivKey(index)] = derivEntry{index: append([]int(nil), index...), grid: g}
	return nil
}

func derivKey(index []int) string {
	parts := make([]string, len(index))
	for i, order := range index {
		parts[i] = strconv.Itoa(order)
	}
	return strings.Join(parts, ",")
}

func lessIndex(a, b []int) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
