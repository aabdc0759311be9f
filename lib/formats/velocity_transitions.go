// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package formats

import "github.com/branchedflowsim/flowsim/lib/resultfile"

// VelocityTransitions is the output of the velocity transition
// observer: a single grid counting transitions between velocity bins
// over a fixed time interval.
var VelocityTransitions = resultfile.MustSchema(resultfile.Schema{
	Name:     "velocity_transitions",
	Header:   "velt002\n",
	FileName: "velocity_transitions.dat",
	Fields: []resultfile.FieldSpec{
		{Name: "num_bins", Type: resultfile.Static(resultfile.Uint)},
		{Name: "dimensions", Type: resultfile.Static(resultfile.Uint)},
		{Name: "time_interval", Type: resultfile.Static(resultfile.Float)},
		{Name: "velocities", Type: resultfile.Static(resultfile.Float), Count: resultfile.Ref("num_bins")},
		{Name: "counts", Type: resultfile.Static(resultfile.GridType), Reduce: resultfile.Add},
	},
})
