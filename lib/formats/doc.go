// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

// Package formats defines the concrete result container formats the
// flowsim observers produce: one [resultfile.Schema] per observer
// output, each with its fixed magic header and conventional file name.
//
// Importing this package (directly or blank) registers every format
// with the resultfile registry, so [resultfile.Load] can sniff any of
// them from a file's leading bytes.
package formats

import "github.com/branchedflowsim/flowsim/lib/resultfile"

func init() {
	for _, schema := range []*resultfile.Schema{
		Density,
		Caustics,
		Trajectories,
		VelocityHistograms,
		VelocityTransitions,
		AngleHistograms,
		AngularDensity,
	} {
		resultfile.Register(schema)
	}
}

// dimensionOf reads an integer configuration field out of prior data.
// Derived record types use it to size their vector members.
func dimensionOf(data resultfile.Data, field string) (int, error) {
	switch v := data[field].(type) {
	case uint64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, &missingDimensionError{field: field, value: v}
	}
}

type missingDimensionError struct {
	field string
	value any
}

func (e *missingDimensionError) Error() string {
	if e.value == nil {
		return "field " + e.field + " must be read before the record type can be derived"
	}
	return "field " + e.field + " does not hold an integer"
}
