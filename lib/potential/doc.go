// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

// Package potential reads and writes medium realizations: the scalar
// fields (with precomputed spatial derivatives) a simulation traces
// rays through.
//
// Potential files carry a sizable grid payload, so [Open] and
// [FromReader] parse only the metadata header up front; the field
// grids load in one pass on first access. A lazily opened potential
// must not outlive its backing file.
package potential
