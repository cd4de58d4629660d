package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-dynform/pkg/validation"
)

//go:embed form-schema.json
var metaSchemaJSON []byte

const metaSchemaURL = "https://github.com/goliatone/go-dynform/form-schema.json"

var (
	metaOnce     sync.Once
	metaCompiled *jsonschema.Schema
	metaErr      error

	printer = message.NewPrinter(language.English)
)

// MetaSchema returns the JSON Schema (draft 2020-12) describing form schema
// documents.
func MetaSchema() []byte {
	return append([]byte(nil), metaSchemaJSON...)
}

func compiledMetaSchema() (*jsonschema.Schema, error) {
	metaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal(metaSchemaJSON, &doc); err != nil {
			metaErr = fmt.Errorf("schema: decode meta-schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(metaSchemaURL, doc); err != nil {
			metaErr = fmt.Errorf("schema: add meta-schema resource: %w", err)
			return
		}
		metaCompiled, metaErr = compiler.Compile(metaSchemaURL)
		if metaErr != nil {
			metaErr = fmt.Errorf("schema: compile meta-schema: %w", metaErr)
		}
	})
	return metaCompiled, metaErr
}

// checkShape validates a decoded document against the meta-schema and returns
// one issue per failing location.
func checkShape(doc any) ([]validation.SchemaIssue, error) {
	meta, err := compiledMetaSchema()
	if err != nil {
		return nil, err
	}
	if err := meta.Validate(doc); err != nil {
		return shapeIssues(err), nil
	}
	return nil, nil
}

func shapeIssues(err error) []validation.SchemaIssue {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []validation.SchemaIssue{errorIssue("", err.Error())}
	}

	byPath := make(map[string][]string)
	collectShapeErrors(verr, byPath)

	paths := make([]string, 0, len(byPath))
	for path := range byPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var issues []validation.SchemaIssue
	for _, path := range paths {
		seen := make(map[string]struct{})
		for _, msg := range byPath[path] {
			if _, dup := seen[msg]; dup {
				continue
			}
			seen[msg] = struct{}{}
			issue := errorIssue(path, msg)
			issue.Field = fieldFromPointer(path)
			issues = append(issues, issue)
		}
	}
	if len(issues) == 0 {
		issues = append(issues, errorIssue("", "document does not match the form schema"))
	}
	return issues
}

// collectShapeErrors walks the cause tree keeping only leaf errors.
func collectShapeErrors(err *jsonschema.ValidationError, byPath map[string][]string) {
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		msg := err.ErrorKind.LocalizedString(printer)
		if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
			path := pointer(err.InstanceLocation)
			byPath[path] = append(byPath[path], msg)
		}
	}
	for _, cause := range err.Causes {
		collectShapeErrors(cause, byPath)
	}
}

func pointer(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, segment := range segments {
		b.WriteByte('/')
		b.WriteString(escapePointer(segment))
	}
	return b.String()
}

func escapePointer(segment string) string {
	segment = strings.ReplaceAll(segment, "~", "~0")
	return strings.ReplaceAll(segment, "/", "~1")
}

// fieldFromPointer maps /fields/<n>/... to the positional label "fields[n]"
// since the id of a malformed descriptor may itself be missing.
func fieldFromPointer(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "fields" {
		return "fields[" + parts[1] + "]"
	}
	return ""
}
