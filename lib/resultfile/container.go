// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package resultfile

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/branchedflowsim/flowsim/lib/compressio"
)

// ErrHeaderMismatch indicates that a stream does not start with the
// schema's fixed magic header.
var ErrHeaderMismatch = errors.New("file header mismatch")

// ErrSchemaMismatch indicates an attempt to reduce containers of
// different schemas.
var ErrSchemaMismatch = errors.New("schema mismatch")

// Schema declares a concrete result container format: its ordered
// field list, its optional fixed magic header, and its optional
// default file name within a result directory. Schemas are built once
// per format (see lib/formats) and shared by every container of that
// format.
type Schema struct {
	// Name identifies the format in error messages and tooling
	// output, e.g. "density".
	Name string

	// Header is the fixed magic prefix of the serialized form, e.g.
	// "dens001\n". Empty means the format carries no header.
	Header string

	// FileName is the conventional file name of the format inside a
	// result directory, e.g. "density.dat". Empty means paths must
	// name the file directly.
	FileName string

	// Fields is the ordered field list. Fields whose type or count
	// reference another field must appear after it.
	Fields []FieldSpec

	// DeriveOnRead runs after all fields were read from a stream and
	// may read format-specific trailing data or derive extra entries
	// of the data map.
	DeriveOnRead func(r io.Reader, data Data) error

	// DeriveOnIngest runs after attribute values were copied into a
	// container and may compute derived or cached views.
	DeriveOnIngest func(c *Container, data Data) error

	// PrepareWrite runs before serialization and must fill in the
	// values of scratch (non-attribute) fields.
	PrepareWrite func(c *Container, data Data) error

	// Logger receives a record for every field whose read or write
	// fails, carrying the full offending spec. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// NewSchema validates and normalizes a schema definition: field names
// must be unique and non-empty, every field needs a usable type, nil
// counts default to one element, and nil reducers default to [Equal].
func NewSchema(definition Schema) (*Schema, error) {
	schema := definition
	schema.Fields = append([]FieldSpec(nil), definition.Fields...)

	seen := make(map[string]bool, len(schema.Fields))
	for i := range schema.Fields {
		field := &schema.Fields[i]
		if field.Name == "" {
			return nil, fmt.Errorf("%w: field %d has no name", ErrInvalidSpec, i)
		}
		if seen[field.Name] {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidSpec, field.Name)
		}
		seen[field.Name] = true
		if !field.Type.valid() {
			return nil, fmt.Errorf("%w: field %q has no type", ErrInvalidSpec, field.Name)
		}
		if field.Count == nil {
			field.Count = Fixed(1)
		}
		if field.Reduce == nil {
			field.Reduce = Equal
		}
	}
	return &schema, nil
}

// MustSchema is NewSchema for static format definitions; it panics on
// an invalid definition.
func MustSchema(definition Schema) *Schema {
	schema, err := NewSchema(definition)
	if err != nil {
		panic("resultfile: " + err.Error())
	}
	return schema
}

func (s *Schema) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Container is one result of the schema's format: the values of every
// attribute field, keyed by name. Containers are created empty, from
// a value map, or by parsing a file, and merged with [Container.Reduce].
type Container struct {
	schema *Schema
	attrs  Data
}

// NewContainer returns an empty container of this schema.
func (s *Schema) NewContainer() *Container {
	return &Container{schema: s, attrs: Data{}}
}

// FromData builds a container from a value map. Every attribute field
// of the schema must be present.
func (s *Schema) FromData(data Data) (*Container, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: container source must be a value map", ErrInvalidSpec)
	}
	container := s.NewContainer()
	if err := container.Ingest(data); err != nil {
		return nil, err
	}
	return container, nil
}

// FromFile parses a container from the file at path. If path is a
// directory and the schema declares a default file name, the default
// file inside that directory is read. Compressed files (zstd or lz4
// frames) are decompressed transparently.
func (s *Schema) FromFile(path string) (*Container, error) {
	resolved, err := s.resolvePath(path)
	if err != nil {
		return nil, err
	}
	file, err := compressio.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("opening result %s: %w", resolved, err)
	}
	defer file.Close()
	container, err := s.FromReader(file)
	if err != nil {
		return nil, fmt.Errorf("reading result %s: %w", resolved, err)
	}
	return container, nil
}

func (s *Schema) resolvePath(path string) (string, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && !info.IsDir():
		return path, nil
	case err == nil && info.IsDir() && s.FileName != "":
		return filepath.Join(path, s.FileName), nil
	case err == nil:
		return "", fmt.Errorf("could not open result %s: directory given but format %q has no default file name: %w",
			path, s.Name, os.ErrNotExist)
	default:
		return "", fmt.Errorf("could not open result %s: %w", path, err)
	}
}

// FromReader parses a container from an open stream positioned at the
// format's header. The stream must already be decompressed; use
// [Schema.FromFile] or [Load] for files at rest.
func (s *Schema) FromReader(r io.Reader) (*Container, error) {
	if s.Header != "" {
		header := make([]byte, len(s.Header))
		if _, err := io.ReadFull(r, header); err != nil {
			return nil, fmt.Errorf("%w: reading %q header: %v", ErrHeaderMismatch, s.Name, err)
		}
		if string(header) != s.Header {
			return nil, fmt.Errorf("%w: file header %q differs from expected %q",
				ErrHeaderMismatch, header, s.Header)
		}
	}

	data := Data{}
	for i := range s.Fields {
		field := &s.Fields[i]
		if _, err := field.Read(r, data); err != nil {
			s.logger().Error("reading result field failed",
				"format", s.Name, "spec", field.String(), "error", err)
			return nil, fmt.Errorf("reading %s: %w", field, err)
		}
	}

	if s.DeriveOnRead != nil {
		if err := s.DeriveOnRead(r, data); err != nil {
			return nil, fmt.Errorf("post-read hook for %q: %w", s.Name, err)
		}
	}

	container := s.NewContainer()
	if err := container.Ingest(data); err != nil {
		return nil, err
	}
	return container, nil
}

// Schema returns the schema the container is bound to.
func (c *Container) Schema() *Schema { return c.schema }

// Get returns the value of a field (or of a derived entry set by an
// ingest hook).
func (c *Container) Get(name string) (any, bool) {
	value, ok := c.attrs[name]
	return value, ok
}

// Set stores a field value. No verification against the schema
// happens here; serialization checks types and shapes.
func (c *Container) Set(name string, value any) {
	c.attrs[name] = value
}

// Attributes returns a shallow copy of the container's value map.
func (c *Container) Attributes() Data {
	copied := make(Data, len(c.attrs))
	for name, value := range c.attrs {
		copied[name] = value
	}
	return copied
}

// Ingest copies the attribute fields of the schema out of data into
// the container, then runs the schema's ingest hook. Scratch fields
// in data are ignored; they are recomputed at write time.
func (c *Container) Ingest(data Data) error {
	if data == nil {
		return fmt.Errorf("%w: ingest expects a value map", ErrInvalidSpec)
	}
	for i := range c.schema.Fields {
		field := &c.schema.Fields[i]
		if field.Scratch {
			continue
		}
		value, ok := data[field.Name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingField, field.Name)
		}
		c.attrs[field.Name] = canonicalValue(value)
	}
	if c.schema.DeriveOnIngest != nil {
		if err := c.schema.DeriveOnIngest(c, data); err != nil {
			return fmt.Errorf("ingest hook for %q: %w", c.schema.Name, err)
		}
	}
	return nil
}

// WriteTo serializes the container: the fixed header if any, then
// every field in spec order. Scratch fields are filled in by the
// schema's PrepareWrite hook just before writing.
func (c *Container) WriteTo(w io.Writer) error {
	if c.schema.Header != "" {
		if _, err := io.WriteString(w, c.schema.Header); err != nil {
			return fmt.Errorf("writing %q header: %w", c.schema.Name, err)
		}
	}

	data := Data{}
	for i := range c.schema.Fields {
		field := &c.schema.Fields[i]
		if field.Scratch {
			continue
		}
		value, ok := c.attrs[field.Name]
		if !ok {
			return fmt.Errorf("%w: attribute %q has no value", ErrMissingField, field.Name)
		}
		data[field.Name] = value
	}

	if c.schema.PrepareWrite != nil {
		if err := c.schema.PrepareWrite(c, data); err != nil {
			return fmt.Errorf("write hook for %q: %w", c.schema.Name, err)
		}
	}

	for i := range c.schema.Fields {
		field := &c.schema.Fields[i]
		if err := field.Write(w, data); err != nil {
			c.schema.logger().Error("writing result field failed",
				"format", c.schema.Name, "spec", field.String(), "error", err)
			return fmt.Errorf("writing %s: %w", field, err)
		}
	}
	return nil
}

// WriteFile serializes the container to a new file at path. If path
// is a directory, the schema's default file name is appended.
func (c *Container) WriteFile(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if c.schema.FileName == "" {
			return fmt.Errorf("writing result: directory given but format %q has no default file name",
				c.schema.Name)
		}
		path = filepath.Join(path, c.schema.FileName)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating result %s: %w", path, err)
	}
	if err := c.WriteTo(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Reduce merges other into c field by field using each field's
// reducer and returns c. Passing nil returns c unchanged, making nil
// the identity for fold-style accumulation:
//
//	var total *resultfile.Container
//	for _, run := range runs {
//		total, err = run.Reduce(total)
//		...
//	}
//
// Reduce mutates its receiver in place; the returned pointer is the
// receiver, returned for chaining. Both containers must share the
// same schema.
func (c *Container) Reduce(other *Container) (*Container, error) {
	if other == nil {
		return c, nil
	}
	if other.schema != c.schema {
		return nil, fmt.Errorf("%w: cannot reduce %q with %q",
			ErrSchemaMismatch, c.schema.Name, other.schema.Name)
	}

	merged := Data{}
	for i := range c.schema.Fields {
		field := &c.schema.Fields[i]
		if field.Scratch {
			continue
		}
		left, ok := c.attrs[field.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, field.Name)
		}
		right, ok := other.attrs[field.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, field.Name)
		}
		value, err := field.Reduce(left, right)
		if err != nil {
			return nil, fmt.Errorf("reducing field %q: %w", field.Name, err)
		}
		merged[field.Name] = value
	}

	if err := c.Ingest(merged); err != nil {
		return nil, err
	}
	return c, nil
}
