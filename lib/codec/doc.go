// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard CBOR encoding configuration.
//
// Flowsim's own result formats are raw native-endian binary (see
// lib/resultfile); CBOR covers the structured side channel around
// them: exported container attributes from `flowsim dump --cbor`, and
// result catalog entries keyed by content digest. The encoder uses
// Core Deterministic Encoding (RFC 8949 §4.2), so the same logical
// data always produces identical bytes.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
package codec
