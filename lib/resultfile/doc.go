// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

// Package resultfile implements the schema-driven container format
// for simulation results.
//
// A container's layout is an ordered list of [FieldSpec] entries plus
// an optional fixed magic header. Each FieldSpec names one value, its
// encoding (unsigned integers, floats, grids, or structured records),
// its element count, and the reduction operator used to merge the
// value with the same field from an independently computed run. A
// field's type and count may depend on fields read earlier in the
// same container: counts can reference prior fields by name, and
// types can be derived from prior data (the caustic record layout,
// for example, depends on the dimension field that precedes it).
//
// Values inside a container's data map are drawn from a closed set:
//
//   - uint64, float64 — bare scalars (one-element fields collapse)
//   - binio.UintArray, binio.FloatArray — shaped arrays
//   - *grid.Grid, []*grid.Grid — self-describing grids
//   - *RecordArray — structured record sequences
//
// Reduction merges two containers of the same schema field by field:
// [Equal] asserts the values match, [Add] sums elementwise, [Concat]
// appends along the leading axis, and [Fail] marks a field as
// non-mergeable. [Container.Reduce] mutates its receiver and returns
// it, so repeated stochastic runs fold into one accumulator without
// retaining per-run data.
//
// Concrete formats register their schemas with [Register]; [Load]
// sniffs a file's leading bytes against every registered header and
// dispatches to the matching schema. See lib/formats for the formats
// the simulator ships.
package resultfile
