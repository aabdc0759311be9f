// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package formats

import "github.com/branchedflowsim/flowsim/lib/resultfile"

// VelocityHistograms is the output of the velocity histogram observer:
// one histogram grid per sampled time, over a shared velocity binning.
var VelocityHistograms = resultfile.MustSchema(resultfile.Schema{
	Name:     "velocity_histograms",
	Header:   "velh001\n",
	FileName: "velocity_histograms.dat",
	Fields: []resultfile.FieldSpec{
		{Name: "num_hists", Type: resultfile.Static(resultfile.Uint)},
		{Name: "num_bins", Type: resultfile.Static(resultfile.Uint)},
		{Name: "dimensions", Type: resultfile.Static(resultfile.Uint)},
		{Name: "times", Type: resultfile.Static(resultfile.Float), Count: resultfile.Ref("num_hists")},
		{Name: "velocities", Type: resultfile.Static(resultfile.Float), Count: resultfile.Ref("num_bins")},
		{
			Name:   "counts",
			Type:   resultfile.Static(resultfile.GridType),
			Count:  resultfile.Ref("num_hists"),
			Reduce: resultfile.Add,
		},
	},
})
