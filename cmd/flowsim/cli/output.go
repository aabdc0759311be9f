// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"os"

	"gopkg.in/yaml.v3"
)

// WriteYAML marshals value as YAML and writes it to stdout. This is
// the standard human-readable structured output of inspection
// commands; result payloads too large for it (grids, record arrays)
// are summarized by the caller before emission.
func WriteYAML(value any) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(value); err != nil {
		encoder.Close()
		return err
	}
	return encoder.Close()
}
