// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/branchedflowsim/flowsim/cmd/flowsim/cli"
	"github.com/branchedflowsim/flowsim/lib/codec"
	"github.com/branchedflowsim/flowsim/lib/resultfile"
)

func dumpCommand() *cli.Command {
	var output string
	var diag bool
	return &cli.Command{
		Name:    "dump",
		Summary: "export a result's full contents as deterministic CBOR",
		Usage:   "flowsim dump [flags] <path>",
		Description: "Parses the result file and re-encodes every attribute,\n" +
			"including full grid and record payloads, as Core Deterministic\n" +
			"Encoding CBOR. The same result always dumps to identical bytes.\n" +
			"With --diag the dump is rendered as human-readable CBOR\n" +
			"diagnostic notation instead of binary.",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("dump", pflag.ContinueOnError)
			flags.StringVarP(&output, "output", "o", "", "write to file instead of stdout")
			flags.BoolVar(&diag, "diag", false, "render CBOR diagnostic notation instead of binary")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: flowsim dump [flags] <path>")
			}
			container, err := resultfile.Load(args[0])
			if err != nil {
				return err
			}
			exported, err := exportData(container.Attributes())
			if err != nil {
				return err
			}
			payload := map[string]any{
				"format":     container.Schema().Name,
				"attributes": exported,
			}
			encoded, err := codec.Marshal(payload)
			if err != nil {
				return fmt.Errorf("encoding dump: %w", err)
			}
			if diag {
				notation, err := codec.Diagnose(encoded)
				if err != nil {
					return fmt.Errorf("rendering diagnostic notation: %w", err)
				}
				encoded = []byte(notation + "\n")
			}
			if output == "" {
				_, err = os.Stdout.Write(encoded)
				return err
			}
			return os.WriteFile(output, encoded, 0644)
		},
	}
}
