package render

import (
	"strings"

	"github.com/goliatone/go-dynform/pkg/model"
)

// ErrorMapping splits an error payload into messages that belong to a
// declared field and messages for the form as a whole.
type ErrorMapping struct {
	Fields map[string]string
	Form   []string
}

// VisibleErrors keeps the messages whose id the schema declares. Errors left
// behind by fields of a replaced schema are dropped.
func VisibleErrors(schema model.FormSchema, errs map[string]string) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for _, field := range schema.Fields {
		if msg := strings.TrimSpace(errs[field.ID]); msg != "" {
			out[field.ID] = msg
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// MapErrorPayload maps an external payload onto the schema. Keys may be bare
// field ids or pointer/dotted paths ("/name", "body.name", "$.data.name");
// the first segment naming a declared field wins and later messages for the
// same field are ignored. Form-level keys ("", "form", "non_field_errors")
// and unknown paths land in Form so nothing is lost.
func MapErrorPayload(schema model.FormSchema, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string]string)}
	if len(payload) == 0 {
		return mapping
	}

	declared := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		declared[field.ID] = struct{}{}
	}

	for _, field := range schema.Fields {
		for rawPath, messages := range payload {
			if id, ok := matchField(rawPath, declared); ok && id == field.ID {
				if msgs := normalizeMessages(messages); len(msgs) > 0 {
					if _, set := mapping.Fields[id]; !set {
						mapping.Fields[id] = msgs[0]
					}
				}
			}
		}
	}
	for rawPath, messages := range payload {
		if _, ok := matchField(rawPath, declared); !ok {
			mapping.Form = append(mapping.Form, messages...)
		}
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func matchField(raw string, declared map[string]struct{}) (string, bool) {
	if _, ok := declared[raw]; ok && raw != "" {
		return raw, true
	}
	if isFormLevelKey(raw) {
		return "", false
	}
	for _, segment := range dropWrapperSegments(parsePathSegments(raw)) {
		if _, ok := declared[segment]; ok {
			return segment, true
		}
	}
	return "", false
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$./")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":    {},
	"request": {},
	"payload": {},
	"data":    {},
	"values":  {},
}

func dropWrapperSegments(segments []string) []string {
	for len(segments) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(segments[0])]; !ok {
			break
		}
		segments = segments[1:]
	}
	return segments
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
