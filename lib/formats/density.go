// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package formats

import "github.com/branchedflowsim/flowsim/lib/resultfile"

// Density is the output of the density observer: the ray density
// accumulated over the whole simulation volume. Densities from
// independent runs of the same configuration add up.
var Density = resultfile.MustSchema(resultfile.Schema{
	Name:     "density",
	Header:   "dens001\n",
	FileName: "density.dat",
	Fields: []resultfile.FieldSpec{
		{Name: "dimensions", Type: resultfile.Static(resultfile.Uint)},
		{Name: "support", Type: resultfile.Static(resultfile.Float), Count: resultfile.Ref("dimensions")},
		{Name: "density", Type: resultfile.Static(resultfile.GridType), Reduce: resultfile.Add},
	},
})
