// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"io"

	"github.com/branchedflowsim/flowsim/lib/compressio"
)

// File-type magic prefixes. Potential files start with the longer
// "bpot5" header; four bytes are enough to tell the formats apart.
const (
	potentialMagic           = "bpot"
	velocityHistogramMagic   = "velh"
	velocityTransitionsMagic = "velt"
)

// IsPotentialFile reports whether the file at path starts with the
// potential container magic.
func IsPotentialFile(path string) (bool, error) {
	return hasMagic(path, potentialMagic)
}

// IsVelocityHistogramFile reports whether the file at path starts
// with the velocity histogram magic.
func IsVelocityHistogramFile(path string) (bool, error) {
	return hasMagic(path, velocityHistogramMagic)
}

// IsVelocityTransitionsFile reports whether the file at path starts
// with the velocity transitions magic.
func IsVelocityTransitionsFile(path string) (bool, error) {
	return hasMagic(path, velocityTransitionsMagic)
}

func hasMagic(path, magic string) (bool, error) {
	file, err := compressio.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	prefix := make([]byte, len(magic))
	if _, err := io.ReadFull(file, prefix); err != nil {
		// A file shorter than the magic is simply not of this type.
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, err
	}
	return string(prefix) == magic, nil
}
