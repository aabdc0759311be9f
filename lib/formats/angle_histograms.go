// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package formats

import "github.com/branchedflowsim/flowsim/lib/resultfile"

// AngleHistograms is the output of the angle histogram observer. The
// counts field is a two-dimensional array indexed by histogram and
// angle bin; the running angle sums allow computing moments without
// the raw samples.
var AngleHistograms = resultfile.MustSchema(resultfile.Schema{
	Name:     "angle_histograms",
	Header:   "angh001\n",
	FileName: "angle_histograms.dat",
	Fields: []resultfile.FieldSpec{
		{Name: "num_hists", Type: resultfile.Static(resultfile.Uint)},
		{Name: "num_bins", Type: resultfile.Static(resultfile.Uint)},
		{Name: "times", Type: resultfile.Static(resultfile.Float), Count: resultfile.Ref("num_hists")},
		{Name: "angles", Type: resultfile.Static(resultfile.Float), Count: resultfile.Ref("num_bins")},
		{
			Name:   "sum_angles",
			Type:   resultfile.Static(resultfile.Float),
			Count:  resultfile.Ref("num_hists"),
			Reduce: resultfile.Add,
		},
		{
			Name:   "sum_angles_squared",
			Type:   resultfile.Static(resultfile.Float),
			Count:  resultfile.Ref("num_hists"),
			Reduce: resultfile.Add,
		},
		{
			Name:   "counts",
			Type:   resultfile.Static(resultfile.Uint),
			Count:  resultfile.Tuple(resultfile.Ref("num_hists"), resultfile.Ref("num_bins")),
			Reduce: resultfile.Add,
		},
	},
})
