// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package potential

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/branchedflowsim/flowsim/lib/binio"
	"github.com/branchedflowsim/flowsim/lib/compressio"
)

// ErrFormat indicates a stream that is not a well-formed potential
// file.
var ErrFormat = errors.New("malformed potential file")

// Meta carries the provenance of a potential: how it was generated
// and from which random seed.
type Meta struct {
	// Seed is the RNG seed the medium was generated from.
	Seed uint64
	// Version identifies the generator that produced the medium.
	Version uint64
	// CorrLength is the correlation length of the random medium.
	CorrLength float64
	// Info is a free-form human readable description.
	Info string
}

// Config is the metadata header of a potential.
type Config struct {
	Dimension int
	Support   []float64
	Extents   binio.Shape
	Strength  float64
	Meta      Meta
}

func (c *Config) validate() error {
	if c.Dimension <= 0 {
		return fmt.Errorf("potential dimension must be positive, got %d", c.Dimension)
	}
	if len(c.Support) != c.Dimension {
		return fmt.Errorf("potential support has %d entries for dimension %d", len(c.Support), c.Dimension)
	}
	if len(c.Extents) != c.Dimension {
		return fmt.Errorf("potential extents %s do not match dimension %d", c.Extents, c.Dimension)
	}
	return nil
}

// loadState tracks deferred field loading. A potential built in
// memory has nothing to load; one opened from a stream moves from
// pending through running to done exactly once. The running state
// lets the record loader access fields without recursing into
// another load.
type loadState uint8

const (
	loadNone loadState = iota
	loadPending
	loadRunning
	loadDone
)

// Potential is one realization of a medium: a set of named fields
// over a common grid geometry, plus the metadata describing how the
// medium was generated.
type Potential struct {
	config Config
	fields map[string]*Field

	state     loadState
	source    io.Reader
	closer    io.Closer
	gridCount int
	loadErr   error
}

// New builds an in-memory potential from a validated config.
func New(config Config) (*Potential, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.Support = append([]float64(nil), config.Support...)
	config.Extents = append(binio.Shape(nil), config.Extents...)
	return &Potential{config: config, fields: make(map[string]*Field)}, nil
}

// Open parses the potential file at path. Only the metadata header is
// read; the field grids load on first access, so the potential holds
// the file open until [Potential.Close]. Compressed files are
// decompressed transparently.
func Open(path string) (*Potential, error) {
	file, err := compressio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening potential %s: %w", path, err)
	}
	p, err := FromReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("reading potential %s: %w", path, err)
	}
	p.closer = file
	return p, nil
}

// FromReader parses a potential from an open stream. The metadata
// header is consumed immediately; the stream must stay readable until
// the fields are first accessed.
func FromReader(r io.Reader) (*Potential, error) {
	config, gridCount, err := readConfig(r)
	if err != nil {
		return nil, err
	}
	return &Potential{
		config:    config,
		fields:    make(map[string]*Field),
		state:     loadPending,
		source:    r,
		gridCount: gridCount,
	}, nil
}

// Close releases the backing file of a lazily opened potential.
// Closing before the fields were accessed abandons them.
func (p *Potential) Close() error {
	if p.closer == nil {
		return nil
	}
	closer := p.closer
	p.closer = nil
	return closer.Close()
}

// Dimension returns the number of spatial axes.
func (p *Potential) Dimension() int { return p.config.Dimension }

// Support returns the physical size of the medium along each axis.
func (p *Potential) Support() []float64 { return p.config.Support }

// Extents returns the grid resolution along each axis.
func (p *Potential) Extents() binio.Shape { return p.config.Extents }

// Strength returns the potential strength the medium was scaled to.
func (p *Potential) Strength() float64 { return p.config.Strength }

// Meta returns the provenance metadata.
func (p *Potential) Meta() Meta { return p.config.Meta }

// SetField stores a field under name. The field's extents must match
// the potential's.
func (p *Potential) SetField(name string, field *Field) error {
	if err := p.ensureLoaded(); err != nil {
		return err
	}
	if !field.Extents().Equal(p.config.Extents) {
		return fmt.Errorf("field extents %s differ from potential extents %s",
			field.Extents(), p.config.Extents)
	}
	p.fields[name] = field
	return nil
}

// Field returns the field with the given name, creating an empty one
// if it does not exist yet.
func (p *Potential) Field(name string) (*Field, error) {
	if err := p.ensureLoaded(); err != nil {
		return nil, err
	}
	field, ok := p.fields[name]
	if !ok {
		field = NewField(p.config.Extents)
		p.fields[name] = field
	}
	return field, nil
}

// Fields returns the names of all fields, sorted.
func (p *Potential) Fields() ([]string, error) {
	if err := p.ensureLoaded(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(p.fields))
	for name := range p.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// OnlyField returns the single field of the potential. It fails when
// the potential holds zero or several fields.
func (p *Potential) OnlyField() (*Field, error) {
	names, err := p.Fields()
	if err != nil {
		return nil, err
	}
	if len(names) != 1 {
		return nil, fmt.Errorf("potential has %d fields, expected exactly one", len(names))
	}
	return p.fields[names[0]], nil
}

// GridCount returns the total number of stored grids across all
// fields and derivatives.
func (p *Potential) GridCount() (int, error) {
	if err := p.ensureLoaded(); err != nil {
		return 0, err
	}
	total := 0
	for _, field := range p.fields {
		total += len(field.grids)
	}
	return total, nil
}

// ensureLoaded performs the one-shot bulk load of a lazily opened
// potential. Field accessors during the load (the record loader uses
// them) see the running state and pass through. A failed load is
// sticky: every later access reports the same error.
func (p *Potential) ensureLoaded() error {
	switch p.state {
	case loadNone, loadDone:
		return p.loadErr
	case loadRunning:
		return nil
	}
	p.state = loadRunning
	slog.Debug("loading potential field data", "grids", p.gridCount)
	err := readRecords(p.source, p, p.gridCount)
	p.state = loadDone
	if err != nil {
		p.loadErr = fmt.Errorf("loading potential fields: %w", err)
	}
	return p.loadErr
}

// WriteFile serializes the potential to a new file at path.
func (p *Potential) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating potential %s: %w", path, err)
	}
	if err := p.WriteTo(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
