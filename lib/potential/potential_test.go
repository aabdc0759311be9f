// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package potential

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/branchedflowsim/flowsim/lib/binio"
	"github.com/branchedflowsim/flowsim/lib/grid"
)

func testConfig() Config {
	return Config{
		Dimension: 2,
		Support:   []float64{1.0, 2.0},
		Extents:   binio.Shape{10, 20},
		Strength:  0.1,
		Meta: Meta{
			Seed:       12345,
			Version:    3,
			CorrLength: 0.05,
			Info:       "correlated gaussian medium",
		},
	}
}

func buildTestPotential(t *testing.T) *Potential {
	t.Helper()
	p, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	field, err := p.Field("pot")
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	if err := field.SetPartialDerivative(grid.ZerosFloat64(binio.Shape{10, 20}), 0, 0); err != nil {
		t.Fatalf("SetPartialDerivative(0,0): %v", err)
	}
	if err := field.SetPartialDerivative(grid.ZerosFloat64(binio.Shape{10, 20}), 1, 2); err != nil {
		t.Fatalf("SetPartialDerivative(1,2): %v", err)
	}
	return p
}

func TestHeaderInfoLength(t *testing.T) {
	p, err := New(Config{
		Dimension: 1,
		Support:   []float64{1},
		Extents:   binio.Shape{4},
		Meta:      Meta{Info: "hello"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := p.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	// The stored length is len(info)+1: it counts the newline that
	// terminates the length line.
	if !bytes.HasPrefix(buf.Bytes(), []byte("bpot5 6\nhello")) {
		t.Fatalf("header = %q", buf.Bytes()[:13])
	}
}

func TestRoundTrip(t *testing.T) {
	original := buildTestPotential(t)
	var buf bytes.Buffer
	if err := original.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	parsed, err := FromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	if parsed.Dimension() != 2 {
		t.Fatalf("dimension = %d, want 2", parsed.Dimension())
	}
	if !parsed.Extents().Equal(binio.Shape{10, 20}) {
		t.Fatalf("extents = %s, want (10, 20)", parsed.Extents())
	}
	meta := parsed.Meta()
	if meta.Seed != 12345 || meta.Version != 3 || meta.CorrLength != 0.05 {
		t.Fatalf("meta = %+v", meta)
	}
	if meta.Info != "correlated gaussian medium" {
		t.Fatalf("info = %q", meta.Info)
	}
	if parsed.Strength() != 0.1 {
		t.Fatalf("strength = %v, want 0.1", parsed.Strength())
	}

	field, err := parsed.OnlyField()
	if err != nil {
		t.Fatalf("OnlyField: %v", err)
	}
	derivs := field.Derivatives()
	if len(derivs) != 2 {
		t.Fatalf("derivatives = %v, want 2 entries", derivs)
	}
	g, err := field.PartialDerivative(1, 2)
	if err != nil {
		t.Fatalf("PartialDerivative(1, 2): %v", err)
	}
	if !g.Extents().Equal(binio.Shape{10, 20}) {
		t.Fatalf("derivative grid extents = %s", g.Extents())
	}
	count, err := parsed.GridCount()
	if err != nil {
		t.Fatalf("GridCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("grid count = %d, want 2", count)
	}
}

// trackingReader counts consumed bytes, to observe lazy loading.
type trackingReader struct {
	r io.Reader
	n int
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.n += n
	return n, err
}

func TestFieldsLoadLazily(t *testing.T) {
	original := buildTestPotential(t)
	var buf bytes.Buffer
	if err := original.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	total := buf.Len()

	tracked := &trackingReader{r: bytes.NewReader(buf.Bytes())}
	parsed, err := FromReader(tracked)
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	afterHeader := tracked.n
	if afterHeader >= total {
		t.Fatalf("header parse consumed the whole stream (%d bytes)", afterHeader)
	}

	// Metadata accessors must not touch the stream.
	_ = parsed.Dimension()
	_ = parsed.Meta()
	_ = parsed.Strength()
	if tracked.n != afterHeader {
		t.Fatalf("metadata access consumed %d extra bytes", tracked.n-afterHeader)
	}

	if _, err := parsed.Field("pot"); err != nil {
		t.Fatalf("Field: %v", err)
	}
	if tracked.n != total {
		t.Fatalf("field access consumed %d of %d bytes", tracked.n, total)
	}
}

func TestOpenAndWriteFile(t *testing.T) {
	original := buildTestPotential(t)
	path := filepath.Join(t.TempDir(), "potential.dat")
	if err := original.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	parsed, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer parsed.Close()

	names, err := parsed.Fields()
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	if len(names) != 1 || names[0] != "pot" {
		t.Fatalf("fields = %v, want [pot]", names)
	}
}

func TestRejectsForeignStream(t *testing.T) {
	_, err := FromReader(strings.NewReader("not a potential"))
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("FromReader: got %v, want ErrFormat", err)
	}
}

func TestOnlyFieldNeedsExactlyOne(t *testing.T) {
	p, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.OnlyField(); err == nil {
		t.Fatalf("OnlyField on an empty potential must fail")
	}
	if _, err := p.Field("a"); err != nil {
		t.Fatalf("Field(a): %v", err)
	}
	if _, err := p.Field("b"); err != nil {
		t.Fatalf("Field(b): %v", err)
	}
	if _, err := p.OnlyField(); err == nil {
		t.Fatalf("OnlyField with two fields must fail")
	}
}

func TestFieldExtentChecks(t *testing.T) {
	p, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.SetField("pot", NewField(binio.Shape{5, 5})); err == nil {
		t.Fatalf("SetField with mismatched extents must fail")
	}

	field := NewField(binio.Shape{10, 20})
	if err := field.SetPartialDerivative(grid.ZerosFloat64(binio.Shape{5, 5}), 0, 0); err == nil {
		t.Fatalf("SetPartialDerivative with mismatched grid extents must fail")
	}
	if err := field.SetPartialDerivative(grid.ZerosFloat64(binio.Shape{10, 20}), 0); err == nil {
		t.Fatalf("SetPartialDerivative with a short index must fail")
	}
	if _, err := field.PartialDerivative(0, 0); err == nil {
		t.Fatalf("PartialDerivative of an absent entry must fail")
	}
}

func TestConfigValidation(t *testing.T) {
	bad := []Config{
		{Dimension: 0},
		{Dimension: 2, Support: []float64{1}, Extents: binio.Shape{2, 2}},
		{Dimension: 2, Support: []float64{1, 1}, Extents: binio.Shape{2}},
	}
	for i, config := range bad {
		if _, err := New(config); err == nil {
			t.Errorf("config %d: New must fail", i)
		}
	}
}
