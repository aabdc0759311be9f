// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package formats

import (
	"fmt"

	"github.com/branchedflowsim/flowsim/lib/binio"
	"github.com/branchedflowsim/flowsim/lib/resultfile"
)

// TrajectorySample is the per-sample record type the trajectory
// observer writes: periodic snapshots of ray position and velocity.
func TrajectorySample(dim int) *resultfile.RecordType {
	vec := binio.Shape{dim}
	return resultfile.Record(
		resultfile.RecordField{Name: "trajectory", Kind: resultfile.ElemUint64},
		resultfile.RecordField{Name: "position", Kind: resultfile.ElemFloat64, Shape: vec},
		resultfile.RecordField{Name: "velocity", Kind: resultfile.ElemFloat64, Shape: vec},
		resultfile.RecordField{Name: "time", Kind: resultfile.ElemFloat64},
	)
}

// Trajectories is the output of the trajectory observer. Trajectory
// indices are only unique within one run, so max_index refuses to
// merge: concatenating sample lists from different runs would alias
// unrelated trajectories.
var Trajectories = resultfile.MustSchema(resultfile.Schema{
	Name:     "trajectories",
	Header:   "traj001\n",
	FileName: "trajectory.dat",
	Fields: []resultfile.FieldSpec{
		{Name: "dimension", Type: resultfile.Static(resultfile.Uint)},
		{Name: "max_index", Type: resultfile.Static(resultfile.Uint), Reduce: resultfile.Fail},
		{Name: "num_samples", Type: resultfile.Static(resultfile.Uint), Scratch: true},
		{
			Name: "trajectories",
			Type: resultfile.Derived(func(data resultfile.Data) (resultfile.DataType, error) {
				dim, err := dimensionOf(data, "dimension")
				if err != nil {
					return nil, err
				}
				return TrajectorySample(dim), nil
			}),
			Count:  resultfile.Ref("num_samples"),
			Reduce: resultfile.Concat,
		},
	},
	PrepareWrite: func(c *resultfile.Container, data resultfile.Data) error {
		samples, ok := data["trajectories"].(*resultfile.RecordArray)
		if !ok {
			return fmt.Errorf("trajectories value is %T, not a record array", data["trajectories"])
		}
		data["num_samples"] = uint64(samples.Len())
		return nil
	},
})
