// Package model defines the field descriptor model shared by the validation
// engine, the form state store and the renderers. A FormSchema is an ordered
// list of FieldDescriptor values plus a title and description; it is treated
// as an immutable value and replaced wholesale whenever the schema changes.
//
// FieldValue is the run-time counterpart of a descriptor: a tagged union that
// holds nothing, a text string, an ordered set of option values (checkbox
// groups) or a file reference. ChangeEvent carries a single widget
// interaction from a renderer to the state store.
package model
