// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command dispatch framework for the flowsim
// binary: a declarative command tree with pflag flag parsing,
// structured help output, and typo suggestions for unknown commands
// and flags.
package cli
