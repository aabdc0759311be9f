// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package resultfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/branchedflowsim/flowsim/lib/compressio"
)

// ErrUnknownFormat indicates that a stream's leading bytes match no
// registered container format.
var ErrUnknownFormat = errors.New("unrecognized result format")

// registry maps fixed magic headers to their schemas. Populated by
// static registration at package init time; concrete formats call
// [Register] from their package's init (see lib/formats).
var registry = make(map[string]*Schema)

// Register adds a schema to the format registry used by [Load].
// Registering an empty or duplicate header panics: both are
// programmer errors in a format definition, caught at init.
func Register(schema *Schema) {
	if schema.Header == "" {
		panic("resultfile: cannot register format " + schema.Name + " without a fixed header")
	}
	if existing, ok := registry[schema.Header]; ok {
		panic("resultfile: header " + fmt.Sprintf("%q", schema.Header) +
			" registered by both " + existing.Name + " and " + schema.Name)
	}
	registry[schema.Header] = schema
}

// Registered returns every registered schema, sorted by name.
func Registered() []*Schema {
	schemas := make([]*Schema, 0, len(registry))
	for _, schema := range registry {
		schemas = append(schemas, schema)
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].Name < schemas[j].Name })
	return schemas
}

// Load parses the result file at path, choosing the container format
// by matching the file's leading bytes against every registered
// header. Compressed files are decompressed transparently.
func Load(path string) (*Container, error) {
	file, err := compressio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening result %s: %w", path, err)
	}
	defer file.Close()
	container, err := LoadReader(file)
	if err != nil {
		return nil, fmt.Errorf("loading result %s: %w", path, err)
	}
	return container, nil
}

// LoadReader parses a container from an open stream, sniffing the
// format from the stream's leading bytes.
func LoadReader(r io.Reader) (*Container, error) {
	schema, buffered, err := Sniff(r)
	if err != nil {
		return nil, err
	}
	return schema.FromReader(buffered)
}

// Sniff matches the stream's leading bytes against every registered
// header and returns the winning schema along with a buffered reader
// positioned at the start of the stream (header included).
func Sniff(r io.Reader) (*Schema, io.Reader, error) {
	longest := 0
	for header := range registry {
		if len(header) > longest {
			longest = len(header)
		}
	}
	if longest == 0 {
		return nil, nil, fmt.Errorf("%w: no formats registered", ErrUnknownFormat)
	}

	buffered := bufio.NewReader(r)
	head, err := buffered.Peek(longest)
	if err != nil && len(head) == 0 {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}

	for header, schema := range registry {
		if len(head) >= len(header) && string(head[:len(header)]) == header {
			return schema, buffered, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: leading bytes %q match no registered header", ErrUnknownFormat, head)
}
