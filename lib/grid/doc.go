// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

// Package grid implements the self-describing N-dimensional array
// format shared by all flowsim binary files.
//
// A grid on the wire is a one-byte tag 'g', the unsigned rank, the
// extents, a dtype letter terminated by a NUL byte, a redundant
// element count that must equal the product of the extents, and the
// row-major payload. The redundant count lets readers detect
// truncated or corrupted headers before committing to a large payload
// read. Five dtypes exist: 'd' float64, 'f' float32, 'm' uint64,
// 'j' uint32, and 'l' int64.
//
// Corruption (bad tag, inconsistent count, truncated payload) is
// reported as [ErrCorrupt]; a dtype letter outside the set above is
// [ErrUnsupportedType], a deliberately distinct condition since it
// indicates a format extension rather than damaged data.
package grid
