package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/fileio"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/orchestrator"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/testsupport"
)

const contactJSON = `{
  "formTitle": "Contact",
  "formDescription": "Say hi",
  "fields": [
    {"id": "email", "type": "email", "label": "Email", "required": true},
    {"id": "topic", "type": "select", "label": "Topic", "options": [{"value": "a", "label": "A"}, {"value": "b", "label": "B"}]}
  ]
}`

type captureRenderer struct {
	name   string
	schema model.FormSchema
	opts   render.RenderOptions
}

func (c *captureRenderer) Name() string        { return c.name }
func (c *captureRenderer) ContentType() string { return "text/plain" }

func (c *captureRenderer) Render(_ context.Context, schema model.FormSchema, opts render.RenderOptions) ([]byte, error) {
	c.schema = schema
	c.opts = opts
	return []byte(c.name + ":" + schema.FormTitle), nil
}

func newOrchestrator(t *testing.T, opts ...orchestrator.Option) (*orchestrator.Orchestrator, *captureRenderer) {
	t.Helper()
	capture := &captureRenderer{name: "capture"}
	registry := render.NewRegistry()
	registry.MustRegister(capture)
	opts = append([]orchestrator.Option{
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer("capture"),
	}, opts...)
	return orchestrator.New(opts...), capture
}

func TestGenerate_ReadsDecodesAndRenders(t *testing.T) {
	gen, capture := newOrchestrator(t)

	out, err := gen.Generate(context.Background(), orchestrator.Request{
		Source:  fileio.SourceFromReader("contact.json", strings.NewReader(contactJSON)),
		Variant: render.VariantDark,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(out) != "capture:Contact" {
		t.Fatalf("unexpected output %q", out)
	}
	if diff := cmp.Diff(testsupport.MustParse(t, contactJSON), capture.schema); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
	if capture.opts.Theme == nil || capture.opts.Theme.Variant != render.VariantDark {
		t.Fatalf("expected dark theme, got %+v", capture.opts.Theme)
	}
}

func TestGenerate_SchemaIsClonedBeforeTransforming(t *testing.T) {
	rename := orchestrator.TransformerFunc(func(_ context.Context, form *model.FormSchema) error {
		form.Fields[0].Label = "Renamed"
		return nil
	})
	gen, capture := newOrchestrator(t, orchestrator.WithSchemaTransformer(rename))

	form := testsupport.MustParse(t, contactJSON)
	if _, err := gen.Generate(context.Background(), orchestrator.Request{Schema: &form}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if capture.schema.Fields[0].Label != "Renamed" {
		t.Fatalf("transformer did not run")
	}
	if form.Fields[0].Label != "Email" {
		t.Fatalf("caller schema was mutated: %q", form.Fields[0].Label)
	}
}

func TestGenerate_UnknownRendererAndMissingInput(t *testing.T) {
	gen, _ := newOrchestrator(t)
	form := testsupport.MustParse(t, contactJSON)

	if _, err := gen.Generate(context.Background(), orchestrator.Request{Schema: &form, Renderer: "pdf"}); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected unknown renderer error, got %v", err)
	}
	if _, err := gen.Generate(context.Background(), orchestrator.Request{}); err == nil {
		t.Fatalf("expected missing source error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := gen.Generate(ctx, orchestrator.Request{Schema: &form}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerate_DecodeErrorsAreWrapped(t *testing.T) {
	gen, _ := newOrchestrator(t)

	_, err := gen.Generate(context.Background(), orchestrator.Request{
		Source: fileio.SourceFromReader("broken.json", strings.NewReader(`{"formTitle": `)),
	})
	if err == nil || !strings.Contains(err.Error(), "orchestrator: decode schema") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestGenerate_StrictLint(t *testing.T) {
	form := testsupport.MustParse(t, contactJSON)
	form.Fields[0].Validation = &model.ValidationRule{Pattern: "("}

	lenient, _ := newOrchestrator(t)
	if _, err := lenient.Generate(context.Background(), orchestrator.Request{Schema: &form}); err != nil {
		t.Fatalf("lenient generate: %v", err)
	}

	strict, _ := newOrchestrator(t, orchestrator.WithStrictLint(true))
	if _, err := strict.Generate(context.Background(), orchestrator.Request{Schema: &form}); !errors.Is(err, orchestrator.ErrLint) {
		t.Fatalf("expected ErrLint, got %v", err)
	}
}

func TestGenerate_DefaultsRenderHTML(t *testing.T) {
	form := testsupport.MustParse(t, contactJSON)
	out, err := orchestrator.New().Generate(context.Background(), orchestrator.Request{Schema: &form})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), `data-field="email"`) {
		t.Fatalf("expected vanilla html, got %s", out)
	}
}

func TestJSONPresetTransformer(t *testing.T) {
	files := fstest.MapFS{
		"preset.json": {Data: []byte(`{
		  "formTitle": "Reach out",
		  "fields": {
		    "email": {"label": "Work email", "placeholder": "you@example.com", "required": false},
		    "topic": {"options": {"b": "Billing"}}
		  }
		}`)},
	}
	preset, err := orchestrator.NewJSONPresetTransformerFromFS(files, "preset.json")
	if err != nil {
		t.Fatalf("load preset: %v", err)
	}

	form := testsupport.MustParse(t, contactJSON)
	if err := preset.Transform(context.Background(), &form); err != nil {
		t.Fatalf("transform: %v", err)
	}

	want := testsupport.MustParse(t, contactJSON)
	want.FormTitle = "Reach out"
	want.Fields[0].Label = "Work email"
	want.Fields[0].Placeholder = "you@example.com"
	want.Fields[0].Required = false
	want.Fields[1].Options[1].Label = "Billing"
	if diff := cmp.Diff(want, form); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONPresetTransformer_Errors(t *testing.T) {
	if _, err := orchestrator.NewJSONPresetTransformer([]byte("  ")); err == nil {
		t.Fatalf("expected empty document error")
	}
	if _, err := orchestrator.NewJSONPresetTransformer([]byte("{")); err == nil {
		t.Fatalf("expected parse error")
	}

	preset, err := orchestrator.NewJSONPresetTransformer([]byte(`{"fields": {"ghost": {"label": "Boo"}}}`))
	if err != nil {
		t.Fatalf("load preset: %v", err)
	}
	form := testsupport.MustParse(t, contactJSON)
	if err := preset.Transform(context.Background(), &form); err == nil || !strings.Contains(err.Error(), `"ghost"`) {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}
