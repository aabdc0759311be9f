// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/branchedflowsim/flowsim/cmd/flowsim/cli"
	"github.com/branchedflowsim/flowsim/lib/binhash"
)

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:    "digest",
		Summary: "print BLAKE3 content digests of result files",
		Usage:   "flowsim digest <path>...",
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("usage: flowsim digest <path>...")
			}
			for _, path := range args {
				digest, err := binhash.HashFile(path)
				if err != nil {
					return err
				}
				fmt.Printf("%s  %s\n", binhash.FormatDigest(digest), path)
			}
			return nil
		},
	}
}
