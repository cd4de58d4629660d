package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-dynform/pkg/model"
)

// Transformer mutates a decoded schema before it is linted and rendered.
type Transformer interface {
	Transform(ctx context.Context, form *model.FormSchema) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.FormSchema) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.FormSchema) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON
// document. Field patches are keyed by field id:
//
//	{
//	  "formTitle": "Custom",
//	  "fields": {
//	    "email": {"label": "Work email", "required": true, "options": {"a": "Alpha"}}
//	  }
//	}
type JSONPresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	FormTitle       string                `json:"formTitle"`
	FormDescription string                `json:"formDescription"`
	Fields          map[string]fieldPatch `json:"fields"`
}

type fieldPatch struct {
	Label       string            `json:"label"`
	Placeholder string            `json:"placeholder"`
	Required    *bool             `json:"required"`
	Options     map[string]string `json:"options"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document presetDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a preset document from fsys.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the patches onto form. A patch for an id the schema does
// not declare is an error.
func (t *JSONPresetTransformer) Transform(ctx context.Context, form *model.FormSchema) error {
	if form == nil {
		return errors.New("json preset transformer: schema is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.document.FormTitle != "" {
		form.FormTitle = t.document.FormTitle
	}
	if t.document.FormDescription != "" {
		form.FormDescription = t.document.FormDescription
	}

	for id, patch := range t.document.Fields {
		field := findField(form.Fields, id)
		if field == nil {
			return fmt.Errorf("json preset transformer: field %q not found", id)
		}
		applyFieldPatch(field, patch)
	}
	return nil
}

func applyFieldPatch(field *model.FieldDescriptor, patch fieldPatch) {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if patch.Required != nil {
		field.Required = *patch.Required
	}
	for i := range field.Options {
		if label, ok := patch.Options[field.Options[i].Value]; ok {
			field.Options[i].Label = label
		}
	}
}

func findField(fields []model.FieldDescriptor, id string) *model.FieldDescriptor {
	id = strings.TrimSpace(id)
	for i := range fields {
		if fields[i].ID == id {
			return &fields[i]
		}
	}
	return nil
}
