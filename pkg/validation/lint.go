package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-dynform/pkg/model"
)

// Severity grades a schema issue. Errors make a schema unusable; warnings
// describe schemas that load but probably do not behave as intended.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// SchemaIssue represents a schema problem with optional location metadata.
type SchemaIssue struct {
	Path     string   `json:"path,omitempty"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (i SchemaIssue) String() string {
	var b strings.Builder
	b.WriteString(string(i.Severity))
	if i.Path != "" {
		b.WriteString(" at ")
		b.WriteString(i.Path)
	}
	b.WriteString(": ")
	b.WriteString(i.Message)
	return b.String()
}

// SchemaValidationResult captures lint outcomes. Valid is false only when at
// least one issue has error severity.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// Errors returns the error-severity issues.
func (r SchemaValidationResult) Errors() []SchemaIssue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues.
func (r SchemaValidationResult) Warnings() []SchemaIssue {
	return r.filter(SeverityWarning)
}

func (r SchemaValidationResult) filter(severity Severity) []SchemaIssue {
	var out []SchemaIssue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// Lint inspects a decoded schema for problems that the document shape alone
// does not catch.
func Lint(schema model.FormSchema) SchemaValidationResult {
	result := SchemaValidationResult{Valid: true}
	report := func(severity Severity, path, field, format string, args ...any) {
		result.Issues = append(result.Issues, SchemaIssue{
			Path:     path,
			Field:    field,
			Message:  fmt.Sprintf(format, args...),
			Severity: severity,
		})
		if severity == SeverityError {
			result.Valid = false
		}
	}

	if strings.TrimSpace(schema.FormTitle) == "" {
		report(SeverityWarning, "/formTitle", "", "form title is empty")
	}

	seen := make(map[string]int, len(schema.Fields))
	for idx, field := range schema.Fields {
		base := fmt.Sprintf("/fields/%d", idx)
		id := strings.TrimSpace(field.ID)

		switch {
		case id == "":
			report(SeverityError, base+"/id", "", "field id is required")
		case id != field.ID:
			report(SeverityWarning, base+"/id", field.ID, "field id has surrounding whitespace")
		}
		if first, dup := seen[field.ID]; dup && id != "" {
			report(SeverityError, base+"/id", field.ID, "duplicate field id (first declared at /fields/%d)", first)
		} else {
			seen[field.ID] = idx
		}

		if field.Type == "" {
			report(SeverityError, base+"/type", field.ID, "field type is required")
		} else if !field.Type.IsKnown() {
			report(SeverityWarning, base+"/type", field.ID, "unknown field type %q rendered as a plain input", field.Type)
		}
		if strings.TrimSpace(field.Label) == "" {
			report(SeverityWarning, base+"/label", field.ID, "field label is empty")
		}

		if field.Type.IsChoice() {
			if len(field.Options) == 0 {
				report(SeverityWarning, base+"/options", field.ID, "%s field has no options", field.Type.Normalize())
			}
			values := make(map[string]struct{}, len(field.Options))
			for optIdx, opt := range field.Options {
				if _, dup := values[opt.Value]; dup {
					report(SeverityWarning, fmt.Sprintf("%s/options/%d/value", base, optIdx), field.ID, "duplicate option value %q", opt.Value)
				}
				values[opt.Value] = struct{}{}
			}
		} else if len(field.Options) > 0 {
			report(SeverityWarning, base+"/options", field.ID, "options are ignored for %s fields", field.Type.Normalize())
		}

		if field.Validation == nil {
			continue
		}
		lintRule(*field.Validation, base+"/validation", field, report)
	}

	return result
}

func lintRule(rule model.ValidationRule, base string, field model.FieldDescriptor, report func(Severity, string, string, string, ...any)) {
	if rule.Pattern != "" {
		if _, err := CompilePattern(rule.Pattern); err != nil {
			report(SeverityError, base+"/pattern", field.ID, "pattern does not compile: %v", unwrapCompile(err))
		}
		switch field.Type.Normalize() {
		case model.FieldTypeCheckbox, model.FieldTypeFile:
			report(SeverityWarning, base+"/pattern", field.ID, "pattern is not applied to %s fields", field.Type.Normalize())
		}
	} else if rule.Message != "" {
		report(SeverityWarning, base+"/message", field.ID, "message has no pattern to report for")
	}

	if rule.MinLength != nil && *rule.MinLength < 0 {
		report(SeverityError, base+"/minLength", field.ID, "minLength must not be negative")
	}
	if rule.MaxLength != nil && *rule.MaxLength < 0 {
		report(SeverityError, base+"/maxLength", field.ID, "maxLength must not be negative")
	}
	if rule.MinLength != nil && rule.MaxLength != nil && *rule.MinLength > *rule.MaxLength {
		report(SeverityWarning, base, field.ID, "minLength %d exceeds maxLength %d; no value can pass", *rule.MinLength, *rule.MaxLength)
	}
	if field.Type.Normalize() == model.FieldTypeFile && (rule.MinLength != nil || rule.MaxLength != nil) {
		report(SeverityWarning, base, field.ID, "length limits are not applied to file fields")
	}
}

func unwrapCompile(err error) string {
	return strings.TrimPrefix(err.Error(), "validation: ")
}
