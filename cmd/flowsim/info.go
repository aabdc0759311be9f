// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/branchedflowsim/flowsim/cmd/flowsim/cli"
	"github.com/branchedflowsim/flowsim/lib/resultfile"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:    "info",
		Summary: "show the format and metadata of a result file",
		Usage:   "flowsim info <path>...",
		Description: "Sniffs each file's format from its magic header and prints\n" +
			"the format name and the container's attribute values. Large\n" +
			"payloads (grids, event lists) are summarized.",
		Examples: []cli.Example{
			{Description: "inspect a density result", Command: "flowsim info results/density.dat"},
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("usage: flowsim info <path>...")
			}
			for _, path := range args {
				container, err := resultfile.Load(path)
				if err != nil {
					return err
				}
				output := map[string]any{
					"file":       path,
					"format":     container.Schema().Name,
					"attributes": summarizeData(container.Attributes()),
				}
				if err := cli.WriteYAML(output); err != nil {
					return fmt.Errorf("writing info for %s: %w", path, err)
				}
			}
			return nil
		},
	}
}

func formatsCommand() *cli.Command {
	return &cli.Command{
		Name:    "formats",
		Summary: "list the known result formats",
		Run: func(args []string) error {
			formats := make([]map[string]any, 0)
			for _, schema := range resultfile.Registered() {
				fields := make([]string, len(schema.Fields))
				for i := range schema.Fields {
					fields[i] = schema.Fields[i].String()
				}
				formats = append(formats, map[string]any{
					"name":   schema.Name,
					"header": schema.Header,
					"file":   schema.FileName,
					"fields": fields,
				})
			}
			return cli.WriteYAML(formats)
		},
	}
}
