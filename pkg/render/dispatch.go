package render

import (
	"github.com/goliatone/go-dynform/pkg/model"
)

// WidgetKind is the closed set of widget shapes a field can render as.
type WidgetKind int

const (
	// WidgetInput is a single-line input typed by the field type.
	WidgetInput WidgetKind = iota
	WidgetTextArea
	// WidgetSelect is a dropdown whose first choice is the empty sentinel.
	WidgetSelect
	WidgetRadioGroup
	WidgetCheckboxGroup
	WidgetFilePicker
)

func (k WidgetKind) String() string {
	switch k {
	case WidgetTextArea:
		return "textarea"
	case WidgetSelect:
		return "select"
	case WidgetRadioGroup:
		return "radio"
	case WidgetCheckboxGroup:
		return "checkbox"
	case WidgetFilePicker:
		return "file"
	default:
		return "input"
	}
}

// SelectPlaceholder labels the empty choice every select widget starts with.
const SelectPlaceholder = "Select..."

// RequiredMarker is appended to the label of required fields.
const RequiredMarker = " *"

// Choice is one option of a select, radio or checkbox widget.
type Choice struct {
	// ID is unique within the page: "<fieldId>-<value>". The select sentinel
	// has no id.
	ID       string
	Value    string
	Label    string
	Selected bool
	// Sentinel marks the empty "Select..." entry.
	Sentinel bool
}

// Widget is the render-ready shape of one field.
type Widget struct {
	Kind    WidgetKind
	FieldID string
	// InputType is the native input type for WidgetInput, e.g. "email".
	InputType   string
	Label       string
	Required    bool
	Placeholder string
	// Text is the current value for inputs, text areas, selects and radios.
	Text    string
	Choices []Choice
	File    *model.FileRef
	Error   string
}

// DisplayLabel is the label with the required marker applied.
func (w Widget) DisplayLabel() string {
	if w.Required {
		return w.Label + RequiredMarker
	}
	return w.Label
}

// HasError reports whether a validation message is attached.
func (w Widget) HasError() bool {
	return w.Error != ""
}

// Event builds the change event this widget emits. raw is the typed text,
// the picked option, or for checkbox groups the toggled option; checked is
// the new checkbox state; files is the file picker selection.
func (w Widget) Event(raw string, checked bool, files ...model.FileRef) model.ChangeEvent {
	evt := model.ChangeEvent{
		FieldID: w.FieldID,
		Type:    w.fieldType(),
	}
	switch w.Kind {
	case WidgetCheckboxGroup:
		evt.RawValue = raw
		evt.Checked = checked
	case WidgetFilePicker:
		if len(files) > 0 {
			evt.Files = append([]model.FileRef(nil), files...)
			evt.RawValue = files[0].Name
		}
	default:
		evt.RawValue = raw
	}
	return evt
}

func (w Widget) fieldType() model.FieldType {
	switch w.Kind {
	case WidgetTextArea:
		return model.FieldTypeTextArea
	case WidgetSelect:
		return model.FieldTypeSelect
	case WidgetRadioGroup:
		return model.FieldTypeRadio
	case WidgetCheckboxGroup:
		return model.FieldTypeCheckbox
	case WidgetFilePicker:
		return model.FieldTypeFile
	default:
		return model.FieldType(w.InputType)
	}
}

// Dispatch maps a descriptor, its current value and its error message to a
// widget. Choice fields without options render with no choices. Unknown
// types become inputs of that type.
func Dispatch(field model.FieldDescriptor, value model.FieldValue, errMsg string) Widget {
	w := Widget{
		FieldID:     field.ID,
		Label:       field.Label,
		Required:    field.Required,
		Placeholder: field.Placeholder,
		Error:       errMsg,
	}
	text, _ := value.AsText()

	switch field.Type.Normalize() {
	case model.FieldTypeTextArea:
		w.Kind = WidgetTextArea
		w.Text = text
	case model.FieldTypeSelect:
		w.Kind = WidgetSelect
		w.Text = text
		w.Choices = make([]Choice, 0, len(field.Options)+1)
		w.Choices = append(w.Choices, Choice{Label: SelectPlaceholder, Selected: text == "", Sentinel: true})
		for _, opt := range field.Options {
			w.Choices = append(w.Choices, Choice{
				ID:       choiceID(field.ID, opt.Value),
				Value:    opt.Value,
				Label:    opt.Label,
				Selected: text != "" && text == opt.Value,
			})
		}
	case model.FieldTypeRadio:
		w.Kind = WidgetRadioGroup
		w.Text = text
		w.Choices = optionChoices(field, func(opt model.FieldOption) bool {
			return text != "" && text == opt.Value
		})
	case model.FieldTypeCheckbox:
		w.Kind = WidgetCheckboxGroup
		w.Choices = optionChoices(field, func(opt model.FieldOption) bool {
			return value.Contains(opt.Value)
		})
	case model.FieldTypeFile:
		w.Kind = WidgetFilePicker
		if ref, ok := value.FileRef(); ok {
			w.File = &ref
		}
	default:
		w.Kind = WidgetInput
		w.InputType = string(field.Type.Normalize())
		if w.InputType == "" {
			w.InputType = string(model.FieldTypeText)
		}
		w.Text = text
	}
	return w
}

// DispatchAll dispatches every declared field in order. Values and errors
// for ids the schema does not declare are ignored.
func DispatchAll(schema model.FormSchema, values model.Values, errs map[string]string) []Widget {
	widgets := make([]Widget, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		widgets = append(widgets, Dispatch(field, values.Get(field.ID), errs[field.ID]))
	}
	return widgets
}

func optionChoices(field model.FieldDescriptor, selected func(model.FieldOption) bool) []Choice {
	if len(field.Options) == 0 {
		return nil
	}
	out := make([]Choice, 0, len(field.Options))
	for _, opt := range field.Options {
		out = append(out, Choice{
			ID:       choiceID(field.ID, opt.Value),
			Value:    opt.Value,
			Label:    opt.Label,
			Selected: selected(opt),
		})
	}
	return out
}

func choiceID(fieldID, value string) string {
	return fieldID + "-" + value
}
