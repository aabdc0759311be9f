// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package potential

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/branchedflowsim/flowsim/lib/binio"
	"github.com/branchedflowsim/flowsim/lib/grid"
)

// magic is the leading marker of a potential file, followed by the
// ASCII decimal length of the info string and a newline.
const magic = "bpot5"

// readConfig parses the metadata header: magic, info string, and the
// fixed numeric fields. It returns the config and the number of grid
// records that follow in the stream.
func readConfig(r io.Reader) (Config, int, error) {
	head := make([]byte, len(magic))
	if _, err := io.ReadFull(r, head); err != nil {
		return Config{}, 0, fmt.Errorf("%w: reading magic: %v", ErrFormat, err)
	}
	if string(head) != magic {
		return Config{}, 0, fmt.Errorf("%w: leading bytes %q", ErrFormat, head)
	}

	line, err := readLine(r)
	if err != nil {
		return Config{}, 0, fmt.Errorf("%w: reading info length: %v", ErrFormat, err)
	}
	infoLen, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || infoLen < 1 {
		return Config{}, 0, fmt.Errorf("%w: invalid info length %q", ErrFormat, line)
	}
	// The stored length counts the newline that terminated the length
	// line itself, so the info string is one byte shorter.
	info := make([]byte, infoLen-1)
	if _, err := io.ReadFull(r, info); err != nil {
		return Config{}, 0, fmt.Errorf("%w: reading info string: %v", ErrFormat, err)
	}

	dimension, err := binio.ReadUint(r)
	if err != nil {
		return Config{}, 0, fmt.Errorf("%w: reading dimension: %v", ErrFormat, err)
	}
	if dimension == 0 || dimension > 16 {
		return Config{}, 0, fmt.Errorf("%w: implausible dimension %d", ErrFormat, dimension)
	}
	support, err := binio.ReadFloats(r, int(dimension))
	if err != nil {
		return Config{}, 0, fmt.Errorf("%w: reading support: %v", ErrFormat, err)
	}
	rawExtents, err := binio.ReadUints(r, int(dimension))
	if err != nil {
		return Config{}, 0, fmt.Errorf("%w: reading extents: %v", ErrFormat, err)
	}
	extents := make(binio.Shape, dimension)
	for i, extent := range rawExtents {
		extents[i] = int(extent)
	}
	seed, err := binio.ReadUint(r)
	if err != nil {
		return Config{}, 0, fmt.Errorf("%w: reading seed: %v", ErrFormat, err)
	}
	version, err := binio.ReadUint(r)
	if err != nil {
		return Config{}, 0, fmt.Errorf("%w: reading generator version: %v", ErrFormat, err)
	}
	gridCount, err := binio.ReadUint(r)
	if err != nil {
		return Config{}, 0, fmt.Errorf("%w: reading grid count: %v", ErrFormat, err)
	}
	corrLength, err := binio.ReadFloat(r)
	if err != nil {
		return Config{}, 0, fmt.Errorf("%w: reading correlation length: %v", ErrFormat, err)
	}
	strength, err := binio.ReadFloat(r)
	if err != nil {
		return Config{}, 0, fmt.Errorf("%w: reading strength: %v", ErrFormat, err)
	}

	config := Config{
		Dimension: int(dimension),
		Support:   support,
		Extents:   extents,
		Strength:  strength,
		Meta: Meta{
			Seed:       seed,
			Version:    version,
			CorrLength: corrLength,
			Info:       string(info),
		},
	}
	if err := config.validate(); err != nil {
		return Config{}, 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return config, int(gridCount), nil
}

// readLine consumes bytes up to and including the next newline, one
// byte at a time: the numeric reads that follow must see an
// unbuffered stream.
func readLine(r io.Reader) (string, error) {
	var line []byte
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", err
		}
		if b[0] == '\n' {
			return string(line), nil
		}
		if len(line) > 32 {
			return "", fmt.Errorf("unterminated length line")
		}
		line = append(line, b[0])
	}
}

// readRecords parses count grid records into p: field name,
// derivative index, grid.
func readRecords(r io.Reader, p *Potential, count int) error {
	for i := 0; i < count; i++ {
		if err := readRecord(r, p); err != nil {
			return fmt.Errorf("grid record %d of %d: %w", i+1, count, err)
		}
	}
	return nil
}

func readRecord(r io.Reader, p *Potential) error {
	nameLen, err := binio.ReadUint(r)
	if err != nil {
		return fmt.Errorf("reading field name length: %w", err)
	}
	if nameLen == 0 || nameLen > 4096 {
		return fmt.Errorf("%w: implausible field name length %d", ErrFormat, nameLen)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return fmt.Errorf("reading field name: %w", err)
	}

	rawIndex, err := binio.ReadUints(r, p.config.Dimension)
	if err != nil {
		return fmt.Errorf("reading derivative index: %w", err)
	}
	index := make([]int, len(rawIndex))
	for i, order := range rawIndex {
		index[i] = int(order)
	}

	g, err := grid.Read(r)
	if err != nil {
		return fmt.Errorf("reading grid for field %q: %w", name, err)
	}

	field, err := p.Field(string(name))
	if err != nil {
		return err
	}
	return field.SetPartialDerivative(g, index...)
}

// WriteTo serializes the potential: the metadata header followed by
// one record per stored grid. Fields and derivatives are emitted in
// sorted order so the output is deterministic; grids are converted to
// float64 on the way out.
func (p *Potential) WriteTo(w io.Writer) error {
	if err := p.ensureLoaded(); err != nil {
		return err
	}

	total := 0
	for _, field := range p.fields {
		total += len(field.grids)
	}

	info := p.config.Meta.Info
	// The length counts the newline ending the length line, matching
	// what readConfig subtracts.
	if _, err := fmt.Fprintf(w, "%s %d\n%s", magic, len(info)+1, info); err != nil {
		return fmt.Errorf("writing potential header: %w", err)
	}

	dim := p.config.Dimension
	numeric := []error{
		binio.WriteUint(w, uint64(dim)),
		binio.WriteFloats(w, p.config.Support, binio.Shape{dim}),
		binio.WriteUints(w, []int(p.config.Extents), binio.Shape{dim}),
		binio.WriteUint(w, p.config.Meta.Seed),
		binio.WriteUint(w, p.config.Meta.Version),
		binio.WriteUint(w, uint64(total)),
		binio.WriteFloat(w, p.config.Meta.CorrLength),
		binio.WriteFloat(w, p.config.Strength),
	}
	for _, err := range numeric {
		if err != nil {
			return fmt.Errorf("writing potential header: %w", err)
		}
	}

	names, err := p.Fields()
	if err != nil {
		return err
	}
	for _, name := range names {
		field := p.fields[name]
		for _, index := range field.Derivatives() {
			if err := writeRecord(w, name, index, field); err != nil {
				return fmt.Errorf("writing field %q derivative %v: %w", name, index, err)
			}
		}
	}
	return nil
}

func writeRecord(w io.Writer, name string, index []int, field *Field) error {
	if err := binio.WriteUint(w, uint64(len(name))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, name); err != nil {
		return err
	}
	if err := binio.WriteUints(w, index, binio.Shape{len(index)}); err != nil {
		return err
	}
	g, err := field.PartialDerivative(index...)
	if err != nil {
		return err
	}
	if g.DType() != grid.Float64 {
		values, err := g.Float64s()
		if err != nil {
			return err
		}
		if g, err = grid.NewFloat64(g.Extents(), values); err != nil {
			return err
		}
	}
	return grid.Write(w, g)
}
