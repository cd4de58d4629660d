package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/validation"
)

// Format identifies the textual encoding of a schema document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromName picks a format from a file name extension. Anything that is
// not .yaml or .yml is treated as JSON.
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Extension returns the conventional file extension, including the dot.
func (f Format) Extension() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Parse decodes a JSON schema document. Parsing is strict: syntax errors,
// duplicate keys, unknown keys, wrong value types, duplicate field ids and
// patterns that do not compile all fail with a *ParseError. Nothing is
// returned partially.
func Parse(text string) (model.FormSchema, error) {
	return parseJSON("", []byte(text))
}

// ParseYAML decodes a YAML schema document with the same rules as Parse.
func ParseYAML(text string) (model.FormSchema, error) {
	return parseYAML("", []byte(text))
}

// Decode parses data using the format implied by name.
func Decode(name string, data []byte) (model.FormSchema, error) {
	if FormatFromName(name) == FormatYAML {
		return parseYAML(name, data)
	}
	return parseJSON(name, data)
}

func parseJSON(source string, data []byte) (model.FormSchema, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.FormSchema{}, newParseError(source, nil, errorIssue("", "document is empty"))
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.FormSchema{}, newParseError(source, err, errorIssue("", "invalid JSON: "+err.Error()))
	}
	if issue := scanDuplicateKeys(data); issue != nil {
		return model.FormSchema{}, newParseError(source, nil, *issue)
	}
	return decodeDocument(source, doc, data)
}

func parseYAML(source string, data []byte) (model.FormSchema, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.FormSchema{}, newParseError(source, nil, errorIssue("", "document is empty"))
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.FormSchema{}, newParseError(source, err, errorIssue("", "invalid YAML: "+err.Error()))
	}
	normalized, err := json.Marshal(doc)
	if err != nil {
		return model.FormSchema{}, newParseError(source, err, errorIssue("", "YAML document cannot be represented as JSON: "+err.Error()))
	}

	var jsonDoc any
	if err := json.Unmarshal(normalized, &jsonDoc); err != nil {
		return model.FormSchema{}, newParseError(source, err, errorIssue("", err.Error()))
	}
	return decodeDocument(source, jsonDoc, normalized)
}

func decodeDocument(source string, doc any, data []byte) (model.FormSchema, error) {
	issues, err := checkShape(doc)
	if err != nil {
		return model.FormSchema{}, err
	}
	if len(issues) > 0 {
		return model.FormSchema{}, newParseError(source, nil, issues...)
	}

	var out model.FormSchema
	if err := json.Unmarshal(data, &out); err != nil {
		return model.FormSchema{}, newParseError(source, err, errorIssue("", err.Error()))
	}
	if out.Fields == nil {
		out.Fields = []model.FieldDescriptor{}
	}

	if lint := validation.Lint(out); !lint.Valid {
		return model.FormSchema{}, newParseError(source, nil, lint.Errors()...)
	}
	return out, nil
}

// Serialize renders the schema as 2-space indented JSON. Keys follow the
// declaration order of the model types and unset optional keys are omitted,
// so the output is stable for a given schema.
func Serialize(schema model.FormSchema) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(forOutput(schema)); err != nil {
		return "", fmt.Errorf("schema: serialize: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// SerializeYAML renders the schema as YAML with 2-space indentation.
func SerializeYAML(schema model.FormSchema) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(forOutput(schema)); err != nil {
		return "", fmt.Errorf("schema: serialize yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("schema: serialize yaml: %w", err)
	}
	return buf.String(), nil
}

// Encode serializes using the requested format.
func Encode(schema model.FormSchema, format Format) (string, error) {
	if format == FormatYAML {
		return SerializeYAML(schema)
	}
	return Serialize(schema)
}

// MustSerialize panics when serialization fails. Serialization of a decoded
// schema cannot fail, which makes this convenient for seeding editors.
func MustSerialize(schema model.FormSchema) string {
	text, err := Serialize(schema)
	if err != nil {
		panic(err)
	}
	return text
}

func forOutput(schema model.FormSchema) model.FormSchema {
	out := schema.Clone()
	if out.Fields == nil {
		out.Fields = []model.FieldDescriptor{}
	}
	return out
}

type scanFrame struct {
	object    bool
	keys      map[string]struct{}
	key       string
	index     int
	expectKey bool
}

// scanDuplicateKeys walks the token stream and reports the first object key
// that appears twice. Standard decoding keeps the last duplicate silently,
// which would let a document mean something other than what it says.
func scanDuplicateKeys(data []byte) *validation.SchemaIssue {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var stack []*scanFrame
	valueDone := func() {
		if n := len(stack); n > 0 && stack[n-1].object {
			stack[n-1].expectKey = true
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			issue := errorIssue(framePointer(stack), "invalid JSON: "+err.Error())
			return &issue
		}

		var top *scanFrame
		if n := len(stack); n > 0 {
			top = stack[n-1]
		}

		if top != nil && top.object && top.expectKey {
			if delim, ok := tok.(json.Delim); ok && delim == '}' {
				stack = stack[:len(stack)-1]
				valueDone()
				continue
			}
			key, _ := tok.(string)
			if _, dup := top.keys[key]; dup {
				issue := errorIssue(framePointer(stack)+"/"+escapePointer(key), fmt.Sprintf("duplicate key %q", key))
				issue.Field = fieldFromPointer(issue.Path)
				return &issue
			}
			top.keys[key] = struct{}{}
			top.key = key
			top.expectKey = false
			continue
		}

		if top != nil && !top.object {
			if delim, ok := tok.(json.Delim); ok && delim == ']' {
				stack = stack[:len(stack)-1]
				valueDone()
				continue
			}
			top.index++
		}

		switch tok {
		case json.Delim('{'):
			stack = append(stack, &scanFrame{object: true, keys: make(map[string]struct{}), expectKey: true})
		case json.Delim('['):
			stack = append(stack, &scanFrame{index: -1})
		default:
			valueDone()
		}
	}
}

func framePointer(stack []*scanFrame) string {
	var b strings.Builder
	for i, frame := range stack {
		if i == len(stack)-1 && frame.object && frame.expectKey {
			break
		}
		b.WriteByte('/')
		if frame.object {
			b.WriteString(escapePointer(frame.key))
		} else if frame.index >= 0 {
			b.WriteString(strconv.Itoa(frame.index))
		}
	}
	return b.String()
}
