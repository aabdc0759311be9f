// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/branchedflowsim/flowsim/lib/binio"
	"github.com/branchedflowsim/flowsim/lib/grid"
	"github.com/branchedflowsim/flowsim/lib/resultfile"
)

// summaryElements is the largest array rendered with its data inline;
// anything bigger collapses to shape and element count.
const summaryElements = 16

// summarizeData renders a container's value map for human-readable
// output: scalars verbatim, small arrays inline, everything else as a
// shape/size description.
func summarizeData(data resultfile.Data) map[string]any {
	rendered := make(map[string]any, len(data))
	for name, value := range data {
		rendered[name] = summarizeValue(value)
	}
	return rendered
}

func summarizeValue(value any) any {
	switch v := value.(type) {
	case uint64, float64:
		return v
	case binio.UintArray:
		if len(v.Data) <= summaryElements {
			return v.Data
		}
		return fmt.Sprintf("uint64%s (%d elements)", v.Shape, v.Shape.Elements())
	case binio.FloatArray:
		if len(v.Data) <= summaryElements {
			return v.Data
		}
		return fmt.Sprintf("float64%s (%d elements)", v.Shape, v.Shape.Elements())
	case *grid.Grid:
		return fmt.Sprintf("grid %s%s", v.DType(), v.Extents())
	case []*grid.Grid:
		grids := make([]any, len(v))
		for i, g := range v {
			grids[i] = summarizeValue(g)
		}
		return grids
	case *resultfile.RecordArray:
		fields := make([]string, len(v.Type.Fields()))
		for i, field := range v.Type.Fields() {
			fields[i] = field.Name
		}
		return map[string]any{"records": v.Len(), "fields": fields}
	default:
		return fmt.Sprintf("%v", v)
	}
}

// exportData renders a container's value map with full payloads, for
// machine-readable dump output.
func exportData(data resultfile.Data) (map[string]any, error) {
	rendered := make(map[string]any, len(data))
	for name, value := range data {
		exported, err := exportValue(value)
		if err != nil {
			return nil, fmt.Errorf("exporting field %q: %w", name, err)
		}
		rendered[name] = exported
	}
	return rendered, nil
}

func exportValue(value any) (any, error) {
	switch v := value.(type) {
	case uint64, float64:
		return v, nil
	case binio.UintArray:
		return map[string]any{"shape": []int(v.Shape), "data": v.Data}, nil
	case binio.FloatArray:
		return map[string]any{"shape": []int(v.Shape), "data": v.Data}, nil
	case *grid.Grid:
		values, err := v.Float64s()
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"dtype":   v.DType().String(),
			"extents": []int(v.Extents()),
			"data":    values,
		}, nil
	case []*grid.Grid:
		grids := make([]any, len(v))
		for i, g := range v {
			exported, err := exportValue(g)
			if err != nil {
				return nil, err
			}
			grids[i] = exported
		}
		return grids, nil
	case *resultfile.RecordArray:
		rows := make([]map[string]any, len(v.Rows))
		for i, row := range v.Rows {
			exported := make(map[string]any, len(row))
			for _, field := range v.Type.Fields() {
				member, err := exportValue(row[field.Name])
				if err != nil {
					return nil, err
				}
				exported[field.Name] = member
			}
			rows[i] = exported
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}
