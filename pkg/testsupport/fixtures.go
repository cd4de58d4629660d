// Package testsupport holds helpers shared by package tests.
package testsupport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/state"
)

// MustParse parses schema text or fails the test.
func MustParse(t *testing.T, text string) model.FormSchema {
	t.Helper()

	parsed, err := schema.Parse(text)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return parsed
}

// LoadSchema reads and decodes a schema fixture, picking JSON or YAML by
// extension.
func LoadSchema(t *testing.T, path string) model.FormSchema {
	t.Helper()

	parsed, err := LoadSchemaFromPath(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return parsed
}

// LoadSchemaFromPath is LoadSchema for setup code without a *testing.T.
func LoadSchemaFromPath(path string) (model.FormSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("testsupport: read schema: %w", err)
	}
	return schema.Decode(path, data)
}

// NewStore builds a store for form and replays events into it.
func NewStore(t *testing.T, form model.FormSchema, events ...model.ChangeEvent) *state.Store {
	t.Helper()

	store := state.New(form)
	for _, evt := range events {
		store.SetValue(evt)
	}
	return store
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput runs render against a buffer and returns both the
// returned string and what was written, so tests can check they agree.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
