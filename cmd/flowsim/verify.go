// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/branchedflowsim/flowsim/cmd/flowsim/cli"
	"github.com/branchedflowsim/flowsim/lib/binhash"
)

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:    "verify",
		Summary: "check result files against a digest manifest",
		Usage:   "flowsim verify <manifest>",
		Description: "Reads a manifest written by \"flowsim digest\" (one\n" +
			"\"<digest>  <path>\" line per file), recomputes every digest, and\n" +
			"reports a per-file status. Exits with code 1 when any file is\n" +
			"missing or has changed.",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: flowsim verify <manifest>")
			}
			manifest, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer manifest.Close()

			failed := 0
			scanner := bufio.NewScanner(manifest)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				encoded, path, ok := strings.Cut(line, "  ")
				if !ok {
					return fmt.Errorf("malformed manifest line %q", line)
				}
				want, err := binhash.ParseDigest(encoded)
				if err != nil {
					return fmt.Errorf("manifest entry for %s: %w", path, err)
				}
				got, err := binhash.HashFile(path)
				switch {
				case err != nil:
					fmt.Printf("%s: FAILED (%v)\n", path, err)
					failed++
				case got != want:
					fmt.Printf("%s: FAILED\n", path)
					failed++
				default:
					fmt.Printf("%s: OK\n", path)
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading manifest: %w", err)
			}
			if failed > 0 {
				fmt.Printf("%d of the listed files did not match\n", failed)
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}
