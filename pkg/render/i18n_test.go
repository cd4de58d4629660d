package render_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
)

type stubTranslator map[string]string

func (t stubTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	if msg, ok := t[key]; ok {
		return msg, nil
	}
	return "", errors.New("missing translation")
}

func TestRenderOptions_MessageFallsBackToDefaults(t *testing.T) {
	var opts render.RenderOptions
	if got := opts.Message(render.MsgSubmit); got != "Submit" {
		t.Fatalf("unexpected default %q", got)
	}
	if got := opts.Message(render.MsgSubmitAccepted, `{"a":"b"}`); got != `Form submitted: {"a":"b"}` {
		t.Fatalf("unexpected formatted default %q", got)
	}
	if got := opts.Message("no.such.key"); got != "no.such.key" {
		t.Fatalf("unknown keys echo the key, got %q", got)
	}

	opts.Translator = stubTranslator{render.MsgSubmit: "Enviar"}
	if got := opts.Message(render.MsgSubmit); got != "Enviar" {
		t.Fatalf("expected translation, got %q", got)
	}
	if got := opts.Message(render.MsgSelect); got != "Select..." {
		t.Fatalf("missing translation keeps default, got %q", got)
	}
}

func TestRenderOptions_OnMissingHook(t *testing.T) {
	var seen error
	opts := render.RenderOptions{
		OnMissing: func(_ string, key string, _ []any, err error) string {
			seen = err
			return "[" + key + "]"
		},
	}
	if got := opts.Message(render.MsgSubmit); got != "[form.submit]" {
		t.Fatalf("unexpected text %q", got)
	}
	if !errors.Is(seen, render.ErrMissingTranslator) {
		t.Fatalf("expected ErrMissingTranslator, got %v", seen)
	}
}

func TestLocalizeSchema(t *testing.T) {
	schema := model.FormSchema{
		FormTitle: "Contact",
		Fields: []model.FieldDescriptor{
			{
				ID:          "country",
				Type:        model.FieldTypeSelect,
				Label:       "Country",
				Placeholder: "Pick one",
				Options:     []model.FieldOption{{Value: "us", Label: "United States"}, {Value: "ca", Label: "Canada"}},
			},
		},
	}
	render.LocalizeSchema(&schema, render.RenderOptions{
		Locale: "es",
		Translator: stubTranslator{
			"form.title":                 "Contacto",
			"fields.country.label":       "País",
			"fields.country.options.us":  "Estados Unidos",
			"fields.country.placeholder": "",
		},
	})

	if schema.FormTitle != "Contacto" || schema.Fields[0].Label != "País" {
		t.Fatalf("unexpected localized schema %+v", schema)
	}
	gotLabels := []string{schema.Fields[0].Options[0].Label, schema.Fields[0].Options[1].Label}
	if diff := cmp.Diff([]string{"Estados Unidos", "Canada"}, gotLabels); diff != "" {
		t.Fatalf("option labels mismatch (-want +got):\n%s", diff)
	}
	if schema.Fields[0].Placeholder != "Pick one" {
		t.Fatalf("blank translations keep the original, got %q", schema.Fields[0].Placeholder)
	}
}

func TestTemplateI18nFuncs(t *testing.T) {
	funcs := render.TemplateI18nFuncs(render.RenderOptions{Locale: "fr"})
	translate, ok := funcs["translate"].(func(string, ...any) string)
	if !ok {
		t.Fatalf("translate helper has unexpected type %T", funcs["translate"])
	}
	if translate(render.MsgExportButton) != "Export Schema JSON" {
		t.Fatalf("unexpected translation")
	}
	locale, ok := funcs["current_locale"].(func() string)
	if !ok || locale() != "fr" {
		t.Fatalf("current_locale helper mismatch")
	}
}
