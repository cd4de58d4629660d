package model

import "strings"

// FieldType is the widget kind requested by a descriptor. Values outside the
// named constants are primitive input kinds and are passed through to the
// renderer untouched.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextArea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeFile     FieldType = "file"

	FieldTypeEmail    FieldType = "email"
	FieldTypeNumber   FieldType = "number"
	FieldTypePassword FieldType = "password"
	FieldTypeDate     FieldType = "date"
	FieldTypeTel      FieldType = "tel"
	FieldTypeURL      FieldType = "url"
)

var knownTypes = map[FieldType]struct{}{
	FieldTypeText:     {},
	FieldTypeTextArea: {},
	FieldTypeSelect:   {},
	FieldTypeRadio:    {},
	FieldTypeCheckbox: {},
	FieldTypeFile:     {},
	FieldTypeEmail:    {},
	FieldTypeNumber:   {},
	FieldTypePassword: {},
	FieldTypeDate:     {},
	FieldTypeTel:      {},
	FieldTypeURL:      {},
	"datetime-local":  {},
	"month":           {},
	"week":            {},
	"time":            {},
	"search":          {},
	"color":           {},
	"range":           {},
	"hidden":          {},
}

// Normalize lower-cases and trims the type name.
func (t FieldType) Normalize() FieldType {
	return FieldType(strings.ToLower(strings.TrimSpace(string(t))))
}

// IsKnown reports whether the type is one of the recognised input kinds.
func (t FieldType) IsKnown() bool {
	_, ok := knownTypes[t.Normalize()]
	return ok
}

// IsChoice reports whether the type draws its values from Options.
func (t FieldType) IsChoice() bool {
	switch t.Normalize() {
	case FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox:
		return true
	default:
		return false
	}
}

// FieldOption is a single entry offered by select, radio and checkbox fields.
type FieldOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// ValidationRule groups the optional checks applied after the required check.
// A nil length pointer means the check is skipped; zero is a real limit.
type ValidationRule struct {
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Message   string `json:"message,omitempty" yaml:"message,omitempty"`
	MinLength *int   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
}

// IsZero reports whether the rule carries no checks at all.
func (r ValidationRule) IsZero() bool {
	return r.Pattern == "" && r.Message == "" && r.MinLength == nil && r.MaxLength == nil
}

// Clone returns a deep copy of the rule.
func (r ValidationRule) Clone() ValidationRule {
	out := ValidationRule{Pattern: r.Pattern, Message: r.Message}
	if r.MinLength != nil {
		out.MinLength = IntPtr(*r.MinLength)
	}
	if r.MaxLength != nil {
		out.MaxLength = IntPtr(*r.MaxLength)
	}
	return out
}

// FieldDescriptor is the static definition of one form field.
type FieldDescriptor struct {
	ID          string          `json:"id" yaml:"id"`
	Type        FieldType       `json:"type" yaml:"type"`
	Label       string          `json:"label" yaml:"label"`
	Placeholder string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []FieldOption   `json:"options,omitempty" yaml:"options,omitempty"`
	Required    bool            `json:"required,omitempty" yaml:"required,omitempty"`
	Validation  *ValidationRule `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// Rule returns the validation rule or the zero rule when none is declared.
func (f FieldDescriptor) Rule() ValidationRule {
	if f.Validation == nil {
		return ValidationRule{}
	}
	return *f.Validation
}

// Option looks up an option by value.
func (f FieldDescriptor) Option(value string) (FieldOption, bool) {
	for _, opt := range f.Options {
		if opt.Value == value {
			return opt, true
		}
	}
	return FieldOption{}, false
}

// Clone returns a deep copy of the descriptor.
func (f FieldDescriptor) Clone() FieldDescriptor {
	out := f
	if f.Options != nil {
		out.Options = append([]FieldOption(nil), f.Options...)
	}
	if f.Validation != nil {
		rule := f.Validation.Clone()
		out.Validation = &rule
	}
	return out
}

// FormSchema is the ordered collection of descriptors plus form-level text.
type FormSchema struct {
	FormTitle       string            `json:"formTitle" yaml:"formTitle"`
	FormDescription string            `json:"formDescription" yaml:"formDescription"`
	Fields          []FieldDescriptor `json:"fields" yaml:"fields"`
}

// Field returns the descriptor with the given id.
func (s FormSchema) Field(id string) (FieldDescriptor, bool) {
	for _, field := range s.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return FieldDescriptor{}, false
}

// FieldIDs lists descriptor ids in declaration order.
func (s FormSchema) FieldIDs() []string {
	ids := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		ids = append(ids, field.ID)
	}
	return ids
}

// Clone returns a deep copy so callers can hand out schemas without sharing
// slices with the store.
func (s FormSchema) Clone() FormSchema {
	out := FormSchema{
		FormTitle:       s.FormTitle,
		FormDescription: s.FormDescription,
		Fields:          make([]FieldDescriptor, 0, len(s.Fields)),
	}
	for _, field := range s.Fields {
		out.Fields = append(out.Fields, field.Clone())
	}
	return out
}

// IntPtr is a helper for building rules in code.
func IntPtr(v int) *int {
	return &v
}
