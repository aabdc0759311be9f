// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func testTree(ran *string) *Command {
	return &Command{
		Name:    "flowsim",
		Summary: "work with simulation result files",
		Subcommands: []*Command{
			{
				Name:    "info",
				Summary: "show result metadata",
				Run: func(args []string) error {
					*ran = "info:" + strings.Join(args, ",")
					return nil
				},
			},
			{
				Name:    "reduce",
				Summary: "merge result files",
				Flags: func() *pflag.FlagSet {
					flags := pflag.NewFlagSet("reduce", pflag.ContinueOnError)
					flags.String("output", "", "output path")
					return flags
				},
				Run: func(args []string) error {
					*ran = "reduce:" + strings.Join(args, ",")
					return nil
				},
			},
		},
	}
}

func TestDispatchToSubcommand(t *testing.T) {
	var ran string
	root := testTree(&ran)
	if err := root.Execute([]string{"info", "density.dat"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ran != "info:density.dat" {
		t.Fatalf("ran = %q", ran)
	}
}

func TestFlagParsing(t *testing.T) {
	var ran string
	root := testTree(&ran)
	if err := root.Execute([]string{"reduce", "--output", "merged.dat", "a.dat", "b.dat"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ran != "reduce:a.dat,b.dat" {
		t.Fatalf("ran = %q", ran)
	}
}

func TestUnknownCommandSuggestion(t *testing.T) {
	var ran string
	root := testTree(&ran)
	err := root.Execute([]string{"redcue"})
	if err == nil {
		t.Fatal("Execute should fail for an unknown command")
	}
	if !strings.Contains(err.Error(), `"reduce"`) {
		t.Errorf("error %q does not suggest reduce", err)
	}
}

func TestUnknownFlagSuggestion(t *testing.T) {
	var ran string
	root := testTree(&ran)
	err := root.Execute([]string{"reduce", "--outptu", "x"})
	if err == nil {
		t.Fatal("Execute should fail for an unknown flag")
	}
	if !strings.Contains(err.Error(), "--output") {
		t.Errorf("error %q does not suggest --output", err)
	}
}

func TestSubcommandRequired(t *testing.T) {
	var ran string
	root := testTree(&ran)
	if err := root.Execute(nil); err == nil {
		t.Fatal("Execute with no args should fail when subcommands exist")
	}
}

func TestHelpListsSubcommands(t *testing.T) {
	var ran string
	root := testTree(&ran)
	var buf bytes.Buffer
	root.PrintHelp(&buf)
	help := buf.String()
	for _, want := range []string{"info", "reduce", "flowsim <command>"} {
		if !strings.Contains(help, want) {
			t.Errorf("help output lacks %q:\n%s", want, help)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"reduce", "redcue", 2},
		{"info", "digest", 6},
	}
	for _, tc := range cases {
		if got := levenshtein(tc.a, tc.b); got != tc.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
