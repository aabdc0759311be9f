// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/branchedflowsim/flowsim/cmd/flowsim/cli"
	"github.com/branchedflowsim/flowsim/lib/resultfile"
)

func reduceCommand() *cli.Command {
	var output string
	return &cli.Command{
		Name:    "reduce",
		Summary: "merge result files from independent runs",
		Usage:   "flowsim reduce --output <path> <input>...",
		Description: "Folds the inputs together field by field using each format's\n" +
			"reduction operators: counts add, event lists concatenate, and\n" +
			"configuration fields must agree. All inputs must be the same\n" +
			"format.",
		Examples: []cli.Example{
			{
				Description: "merge the density of three runs",
				Command:     "flowsim reduce --output merged.dat run1/density.dat run2/density.dat run3/density.dat",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("reduce", pflag.ContinueOnError)
			flags.StringVarP(&output, "output", "o", "", "path for the merged result (required)")
			return flags
		},
		Run: func(args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			if len(args) == 0 {
				return fmt.Errorf("usage: flowsim reduce --output <path> <input>...")
			}
			logger := cli.NewCommandLogger().With("command", "reduce")

			var total *resultfile.Container
			for _, path := range args {
				container, err := resultfile.Load(path)
				if err != nil {
					return err
				}
				merged, err := container.Reduce(total)
				if err != nil {
					return fmt.Errorf("merging %s: %w", path, err)
				}
				total = merged
				logger.Info("merged input", "file", path, "format", total.Schema().Name)
			}

			if err := total.WriteFile(output); err != nil {
				return err
			}
			logger.Info("wrote merged result", "file", output, "inputs", len(args))
			return nil
		},
	}
}
