// Copyright 2026 The Flowsim Authors
// SPDX-License-Identifier: Apache-2.0

package resultfile

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func registerTestSchema(t *testing.T, header string) *Schema {
	t.Helper()
	schema := MustSchema(Schema{
		Name:   "test-" + strings.TrimRight(header, "\n"),
		Header: header,
		Fields: []FieldSpec{
			{Name: "value", Type: Static(Uint)},
		},
	})
	Register(schema)
	return schema
}

func TestLoadSniffsRegisteredFormat(t *testing.T) {
	schema := registerTestSchema(t, "tsta01\n")
	container, err := schema.FromData(Data{"value": 42})
	if err != nil {
		t.Fatalf("FromData: %v", err)
	}
	path := filepath.Join(t.TempDir(), "result.dat")
	if err := container.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Schema() != schema {
		t.Fatalf("Load picked schema %q", loaded.Schema().Name)
	}
	value, _ := loaded.Get("value")
	if value != uint64(42) {
		t.Fatalf("value = %v, want 42", value)
	}
}

func TestLoadReaderUnknownFormat(t *testing.T) {
	registerTestSchema(t, "tstb01\n")
	_, err := LoadReader(strings.NewReader("garbage stream contents"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("LoadReader on garbage: got %v, want ErrUnknownFormat", err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	schema := registerTestSchema(t, "tstc01\n")
	defer func() {
		if recover() == nil {
			t.Fatalf("registering a duplicate header must panic")
		}
	}()
	Register(schema)
}

func TestRegisteredSorted(t *testing.T) {
	registerTestSchema(t, "tstd01\n")
	registerTestSchema(t, "tste01\n")
	schemas := Registered()
	for i := 1; i < len(schemas); i++ {
		if schemas[i-1].Name > schemas[i].Name {
			t.Fatalf("Registered is not sorted: %q before %q", schemas[i-1].Name, schemas[i].Name)
		}
	}
}
