package render

import (
	"strings"

	"github.com/goliatone/go-dynform/pkg/model"
)

// FieldSubset selects fields by id or by type. A field is kept when it
// matches either list. An empty subset keeps everything.
type FieldSubset struct {
	IDs   []string
	Types []model.FieldType
}

// IsEmpty reports whether the subset filters nothing.
func (s FieldSubset) IsEmpty() bool {
	return len(normaliseTokens(s.IDs)) == 0 && len(s.typeSet()) == 0
}

// ParseFieldSubset reads a comma separated id list such as "name, email".
func ParseFieldSubset(raw string) FieldSubset {
	return FieldSubset{IDs: parseTokenList(raw)}
}

// ApplySubset removes the fields that do not match subset, keeping
// declaration order.
func ApplySubset(schema *model.FormSchema, subset FieldSubset) {
	if schema == nil || subset.IsEmpty() {
		return
	}

	ids := normaliseTokens(subset.IDs)
	types := subset.typeSet()

	filtered := make([]model.FieldDescriptor, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		if _, ok := ids[field.ID]; ok {
			filtered = append(filtered, field)
			continue
		}
		if _, ok := types[field.Type.Normalize()]; ok {
			filtered = append(filtered, field)
		}
	}
	schema.Fields = filtered
}

func (s FieldSubset) typeSet() map[model.FieldType]struct{} {
	out := make(map[model.FieldType]struct{}, len(s.Types))
	for _, t := range s.Types {
		if n := t.Normalize(); n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}

// normaliseTokens trims values. Field ids are case-sensitive.
func normaliseTokens(values []string) map[string]struct{} {
	result := make(map[string]struct{}, len(values))
	for _, value := range values {
		token := strings.TrimSpace(value)
		if token == "" {
			continue
		}
		result[token] = struct{}{}
	}
	return result
}

func parseTokenList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' })
	seen := make(map[string]struct{}, len(parts))
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return tokens
}
