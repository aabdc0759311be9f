// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes BLAKE3 content digests of result files.
// Digests identify a result across renames, and let a merge pipeline
// skip inputs it has already folded in.
package binhash
