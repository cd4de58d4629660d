package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-dynform/pkg/model"
)

// Translator resolves message keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

func (f TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return f(locale, key, args...)
}

// MissingTranslationHandler decides the text shown when a key cannot be
// translated. args carries the caller's arguments followed by a
// map{"default": fallback}.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// ErrMissingTranslator is passed to the missing handler when no Translator is
// configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Message keys for the text renderers add around the form.
const (
	MsgAppTitle       = "app.title"
	MsgSubmit         = "form.submit"
	MsgSelect         = "form.select"
	MsgImportLabel    = "schema.import.label"
	MsgImportButton   = "schema.import.button"
	MsgExportButton   = "schema.export.button"
	MsgEditorTitle    = "schema.editor.title"
	MsgEditorApply    = "schema.editor.apply"
	MsgThemeDark      = "theme.dark"
	MsgThemeLight     = "theme.light"
	MsgNoOptions      = "form.no_options"
	MsgSubmitAccepted = "form.submitted"
	MsgImportOK       = "schema.import.ok"
	MsgImportFailed   = "schema.import.failed"
)

// DefaultMessages are the English texts used when a key has no translation.
var DefaultMessages = map[string]string{
	MsgAppTitle:       "Dynamic Form Generator",
	MsgSubmit:         "Submit",
	MsgSelect:         SelectPlaceholder,
	MsgImportLabel:    "Import Schema JSON:",
	MsgImportButton:   "Import",
	MsgExportButton:   "Export Schema JSON",
	MsgEditorTitle:    "Edit Schema JSON:",
	MsgEditorApply:    "Apply",
	MsgThemeDark:      "Dark Mode",
	MsgThemeLight:     "Light Mode",
	MsgNoOptions:      "No options available.",
	MsgSubmitAccepted: "Form submitted: %s",
	MsgImportOK:       "Schema imported successfully!",
	MsgImportFailed:   "Invalid JSON file.",
}

// Message translates key using the options' translator, falling back to
// DefaultMessages. Fallback texts containing verbs are formatted with args.
func (o RenderOptions) Message(key string, args ...any) string {
	fallback := DefaultMessages[key]
	if fallback != "" && len(args) > 0 && strings.Contains(fallback, "%") {
		fallback = fmt.Sprintf(fallback, args...)
	}
	return translate(o.Locale, key, fallback, args, o.Translator, o.onMissing())
}

func (o RenderOptions) onMissing() MissingTranslationHandler {
	if o.OnMissing != nil {
		return o.OnMissing
	}
	return missingTranslationDefault
}

// LocalizeSchema rewrites user-facing schema text in place. Keys are derived
// from field ids: "form.title", "form.description", "fields.<id>.label",
// "fields.<id>.placeholder" and "fields.<id>.options.<value>". Missing keys
// keep the schema's own text. Nothing happens without a Translator.
func LocalizeSchema(schema *model.FormSchema, opts RenderOptions) {
	if schema == nil || opts.Translator == nil {
		return
	}
	keep := func(_, _ string, args []any, _ error) string {
		return fallbackFrom(args)
	}
	tr := func(key, fallback string) string {
		return translate(opts.Locale, key, fallback, nil, opts.Translator, keep)
	}

	schema.FormTitle = tr("form.title", schema.FormTitle)
	schema.FormDescription = tr("form.description", schema.FormDescription)
	for i := range schema.Fields {
		field := &schema.Fields[i]
		base := "fields." + field.ID
		field.Label = tr(base+".label", field.Label)
		if field.Placeholder != "" {
			field.Placeholder = tr(base+".placeholder", field.Placeholder)
		}
		for j := range field.Options {
			opt := &field.Options[j]
			opt.Label = tr(base+".options."+opt.Value, opt.Label)
		}
	}
}

func translate(locale, key, fallback string, args []any, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	withDefault := append(append([]any(nil), args...), map[string]any{"default": fallback})

	if t == nil {
		return onMissing(locale, key, withDefault, ErrMissingTranslator)
	}
	result, err := t.Translate(locale, key, args...)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(locale, key, withDefault, err)
}

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	if fallback := fallbackFrom(args); fallback != "" {
		return fallback
	}
	return key
}

func fallbackFrom(args []any) string {
	if len(args) == 0 {
		return ""
	}
	if m, ok := args[len(args)-1].(map[string]any); ok {
		if s, ok := m["default"].(string); ok {
			return s
		}
	}
	return ""
}
