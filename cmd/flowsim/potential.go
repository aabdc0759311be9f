// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/branchedflowsim/flowsim/cmd/flowsim/cli"
	"github.com/branchedflowsim/flowsim/lib/potential"
)

func potentialCommand() *cli.Command {
	var withFields bool
	return &cli.Command{
		Name:    "potential",
		Summary: "show the metadata of a potential file",
		Usage:   "flowsim potential [flags] <path>",
		Description: "Prints the metadata header of a potential file: geometry,\n" +
			"generation seed, and correlation length. Field grids are only\n" +
			"loaded with --fields.",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("potential", pflag.ContinueOnError)
			flags.BoolVar(&withFields, "fields", false, "also load and list the stored fields")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: flowsim potential [flags] <path>")
			}
			p, err := potential.Open(args[0])
			if err != nil {
				return err
			}
			defer p.Close()

			meta := p.Meta()
			output := map[string]any{
				"file":               args[0],
				"dimension":          p.Dimension(),
				"support":            p.Support(),
				"extents":            []int(p.Extents()),
				"strength":           p.Strength(),
				"seed":               meta.Seed,
				"generator_version":  meta.Version,
				"correlation_length": meta.CorrLength,
				"info":               meta.Info,
			}

			if withFields {
				names, err := p.Fields()
				if err != nil {
					return err
				}
				fields := make(map[string]any, len(names))
				for _, name := range names {
					field, err := p.Field(name)
					if err != nil {
						return err
					}
					derivs := make([]string, 0, len(field.Derivatives()))
					for _, index := range field.Derivatives() {
						derivs = append(derivs, fmt.Sprint(index))
					}
					fields[name] = derivs
				}
				output["fields"] = fields
			}

			return cli.WriteYAML(output)
		},
	}
}
