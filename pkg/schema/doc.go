// Package schema converts form schemas to and from text. JSON is the native
// format used by file import/export and by the live editor; YAML documents are
// accepted and produced with the same shape.
//
// Parsing is strict. A document is checked for syntax, duplicate keys, the
// embedded meta-schema (see MetaSchema) and the error-level rules of
// validation.Lint before a FormSchema is returned. Any failure yields a
// *ParseError and no schema, so callers can keep their active schema as-is.
package schema
