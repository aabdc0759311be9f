// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package formats

import (
	"fmt"

	"github.com/branchedflowsim/flowsim/lib/binio"
	"github.com/branchedflowsim/flowsim/lib/resultfile"
)

// CausticRecord is the per-event record type the caustic observer
// writes: one entry per detected caustic, with position vectors sized
// by the simulation dimension.
func CausticRecord(dim int) *resultfile.RecordType {
	vec := binio.Shape{dim}
	return resultfile.Record(
		resultfile.RecordField{Name: "trajectory", Kind: resultfile.ElemUint64},
		resultfile.RecordField{Name: "position", Kind: resultfile.ElemFloat64, Shape: vec},
		resultfile.RecordField{Name: "velocity", Kind: resultfile.ElemFloat64, Shape: vec},
		resultfile.RecordField{Name: "origin", Kind: resultfile.ElemFloat64, Shape: vec},
		resultfile.RecordField{Name: "original_velocity", Kind: resultfile.ElemFloat64, Shape: vec},
		resultfile.RecordField{Name: "time", Kind: resultfile.ElemFloat64},
		resultfile.RecordField{Name: "index", Kind: resultfile.ElemUint8},
	)
}

// Caustics is the output of the caustic observer. The event list
// concatenates across runs while the ray counts add; the event count
// itself is recomputed from the list on every write.
var Caustics = resultfile.MustSchema(resultfile.Schema{
	Name:     "caustics",
	Header:   "caus001\n",
	FileName: "caustics.dat",
	Fields: []resultfile.FieldSpec{
		{Name: "raycount", Type: resultfile.Static(resultfile.Uint), Reduce: resultfile.Add},
		{Name: "dimension", Type: resultfile.Static(resultfile.Uint)},
		{Name: "caustic_count", Type: resultfile.Static(resultfile.Uint), Scratch: true},
		{
			Name: "caustics",
			Type: resultfile.Derived(func(data resultfile.Data) (resultfile.DataType, error) {
				dim, err := dimensionOf(data, "dimension")
				if err != nil {
					return nil, err
				}
				return CausticRecord(dim), nil
			}),
			Count:  resultfile.Ref("caustic_count"),
			Reduce: resultfile.Concat,
		},
	},
	PrepareWrite: func(c *resultfile.Container, data resultfile.Data) error {
		caustics, ok := data["caustics"].(*resultfile.RecordArray)
		if !ok {
			return fmt.Errorf("caustics value is %T, not a record array", data["caustics"])
		}
		data["caustic_count"] = uint64(caustics.Len())
		return nil
	},
})
