package schema

import (
	"errors"
	"strings"

	"github.com/goliatone/go-dynform/pkg/model"
)

// Document wraps raw schema text together with its origin and format.
type Document struct {
	name   string
	format Format
	raw    []byte
}

// NewDocument constructs a Document, inferring the format from name.
func NewDocument(name string, raw []byte) (Document, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}

	clone := append([]byte(nil), raw...)
	return Document{name: name, format: FormatFromName(name), raw: clone}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(name string, raw []byte) Document {
	doc, err := NewDocument(name, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Name returns the origin identifier for the document.
func (d Document) Name() string {
	return d.name
}

// Format reports the encoding inferred from the name.
func (d Document) Format() Format {
	return d.format
}

// Raw returns a defensive copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Text returns the payload as a string.
func (d Document) Text() string {
	return string(d.raw)
}

// Schema parses the payload.
func (d Document) Schema() (model.FormSchema, error) {
	return Decode(d.name, d.raw)
}
