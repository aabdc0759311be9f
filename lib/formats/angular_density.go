// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package formats

import "github.com/branchedflowsim/flowsim/lib/resultfile"

// AngularDensity is the output of the angular density observer: one
// density grid per sampled radius.
var AngularDensity = resultfile.MustSchema(resultfile.Schema{
	Name:     "angular_density",
	Header:   "rade001\n",
	FileName: "angular_density.dat",
	Fields: []resultfile.FieldSpec{
		{Name: "radii_count", Type: resultfile.Static(resultfile.Uint)},
		{Name: "resolution", Type: resultfile.Static(resultfile.Uint)},
		{Name: "radii", Type: resultfile.Static(resultfile.Float), Count: resultfile.Ref("radii_count")},
		{
			Name:   "counts",
			Type:   resultfile.Static(resultfile.GridType),
			Count:  resultfile.Ref("radii_count"),
			Reduce: resultfile.Add,
		},
	},
})
