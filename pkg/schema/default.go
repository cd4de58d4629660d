package schema

import (
	_ "embed"
	"sync"

	"github.com/goliatone/go-dynform/pkg/model"
)

//go:embed default.json
var defaultSchemaJSON []byte

var (
	defaultOnce   sync.Once
	defaultSchema model.FormSchema
)

// Default returns the schema a new form session starts with.
func Default() model.FormSchema {
	defaultOnce.Do(func() {
		parsed, err := Parse(string(defaultSchemaJSON))
		if err != nil {
			panic(err)
		}
		defaultSchema = parsed
	})
	return defaultSchema.Clone()
}

// DefaultText returns the embedded default document as written.
func DefaultText() string {
	return string(defaultSchemaJSON)
}
