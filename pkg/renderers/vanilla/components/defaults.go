package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-dynform/pkg/render"
)

const (
	templatePrefix = "templates/components/"
)

// NewDefaultRegistry returns a registry with one component per widget kind
// plus the schema editor, which no kind routes to.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(templateComponent(NameInput, "forms.input", "input.tmpl"), render.WidgetInput)
	registry.MustRegister(templateComponent(NameTextarea, "forms.textarea", "textarea.tmpl"), render.WidgetTextArea)
	registry.MustRegister(templateComponent(NameSelect, "forms.select", "select.tmpl"), render.WidgetSelect)
	registry.MustRegister(templateComponent(NameRadioGroup, "forms.radio", "radio.tmpl"), render.WidgetRadioGroup)
	registry.MustRegister(templateComponent(NameCheckboxGroup, "forms.checkbox", "checkbox.tmpl"), render.WidgetCheckboxGroup)
	registry.MustRegister(templateComponent(NameFilePicker, "forms.file", "file.tmpl"), render.WidgetFilePicker)
	registry.MustRegister(schemaEditorComponent())

	return registry
}

func templateComponent(name, partialKey, file string) Component {
	return Component{Name: name, Render: templateComponentRenderer(partialKey, templatePrefix+file)}
}

func templateComponentRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, widget render.Widget, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolvedTemplate := templateName
		if data.Partials != nil {
			if candidate := strings.TrimSpace(data.Partials[partialKey]); candidate != "" {
				resolvedTemplate = candidate
			}
		}

		payload := map[string]any{
			"widget":     WidgetData(widget),
			"no_options": data.NoOptions,
			"config":     data.Config,
		}
		rendered, err := data.Template.RenderTemplate(resolvedTemplate, payload)
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", templateName, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

// WidgetData flattens a widget into the map templates see as "widget".
func WidgetData(w render.Widget) map[string]any {
	choices := make([]map[string]any, 0, len(w.Choices))
	for _, choice := range w.Choices {
		choices = append(choices, map[string]any{
			"id":       choice.ID,
			"value":    choice.Value,
			"label":    choice.Label,
			"selected": choice.Selected,
			"sentinel": choice.Sentinel,
		})
	}

	fileName := ""
	if w.File != nil {
		fileName = w.File.Name
	}

	return map[string]any{
		"id":          w.FieldID,
		"kind":        w.Kind.String(),
		"input_type":  w.InputType,
		"label":       w.DisplayLabel(),
		"required":    w.Required,
		"placeholder": w.Placeholder,
		"value":       w.Text,
		"choices":     choices,
		"file_name":   fileName,
		"error":       w.Error,
		"has_error":   w.HasError(),
	}
}
