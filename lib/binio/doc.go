// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

// Package binio reads and writes the primitive values of the flowsim
// binary formats: unsigned 64-bit integers and 64-bit floats, in the
// host's native byte order, as single block transfers.
//
// The functions here are meant for the metadata portions of result and
// potential files and are written for safety rather than throughput:
// writes verify that values convert losslessly (no negative or
// fractional values as unsigned integers, no integers beyond float64
// precision as floats) and that the realized shape matches the
// caller's expectation.
//
// Shaped data is represented by [UintArray] and [FloatArray], a flat
// row-major payload plus a [Shape]. A value with exactly one element
// collapses to a bare uint64 or float64 on read; the shape (1,)
// accepts a bare scalar on write. These conventions match the existing
// on-disk files byte for byte.
package binio
