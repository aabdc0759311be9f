// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

// The flowsim command inspects, verifies, and merges branched-flow
// simulation result files.
package main

import (
	"fmt"
	"os"

	"github.com/branchedflowsim/flowsim/cmd/flowsim/cli"
	"github.com/branchedflowsim/flowsim/lib/version"

	// Register every result format with the sniffing registry.
	_ "github.com/branchedflowsim/flowsim/lib/formats"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output return an ExitError
		// with the desired exit code. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return rootCommand().Execute(os.Args[1:])
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:    "flowsim",
		Summary: "inspect and merge branched-flow simulation results",
		Subcommands: []*cli.Command{
			infoCommand(),
			dumpCommand(),
			reduceCommand(),
			digestCommand(),
			verifyCommand(),
			formatsCommand(),
			potentialCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "print version information",
		Run: func(args []string) error {
			fmt.Println(version.Full())
			return nil
		},
	}
}
