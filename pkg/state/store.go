package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/validation"
)

// Store owns the active schema and the values and errors of one form session.
// Values and errors are sparse maps keyed by field id. Keys are never pruned
// when the schema changes; entries for ids the schema no longer declares are
// ignored by renderers and by ValidateAll.
type Store struct {
	mu sync.RWMutex

	schema     model.FormSchema
	values     model.Values
	errors     map[string]string
	editorText string
	editorErr  error

	submitter Submitter
	logger    *slog.Logger
	toggle    ToggleValidation
	parse     Parser
	engine    *validation.Engine
}

// Snapshot is a consistent copy of the store.
type Snapshot struct {
	Schema     model.FormSchema
	Values     model.Values
	Errors     map[string]string
	EditorText string
	// EditorErr is why EditorText does not parse, or nil.
	EditorErr error
}

// Submission reports the outcome of Submit.
type Submission struct {
	Accepted bool
	Errors   map[string]string
	Payload  model.Values
}

// New creates a store for initial with empty values and errors. The editor
// text starts as the serialized schema.
func New(initial model.FormSchema, opts ...Option) *Store {
	st := &Store{
		schema: initial.Clone(),
		values: make(model.Values),
		errors: make(map[string]string),
		logger: slog.Default(),
		parse:  schema.Parse,
		engine: validation.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(st)
		}
	}
	st.editorText = st.serialize(st.schema)
	return st
}

// SetValue applies a widget change event and revalidates that field. It
// returns the field's resulting error message, if any.
//
// Checkbox groups toggle evt.RawValue in or out of the current set according
// to evt.Checked. File pickers keep the first file of evt.Files, or none.
// Every other type replaces the value with evt.RawValue. Ids the schema does
// not declare are stored but not validated.
func (s *Store) SetValue(evt model.ChangeEvent) (string, bool) {
	if evt.FieldID == "" {
		s.logger.Warn("state: change event without field id", "type", evt.Type)
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	field, declared := s.schema.Field(evt.FieldID)
	kind := evt.Type
	if declared {
		kind = field.Type
	}

	prior := s.values.Get(evt.FieldID)
	next := nextValue(kind.Normalize(), prior, evt)
	s.values[evt.FieldID] = next

	if !declared {
		s.logger.Debug("state: value stored for undeclared field", "field", evt.FieldID)
		return "", false
	}

	subject := next
	if kind.Normalize() == model.FieldTypeCheckbox && s.toggle == PreToggle {
		subject = prior
	}

	msg, failed := s.engine.Validate(field, subject)
	if failed {
		s.errors[evt.FieldID] = msg
	} else {
		delete(s.errors, evt.FieldID)
	}
	s.logger.Debug("state: value changed", "field", evt.FieldID, "kind", next.Kind(), "failed", failed)
	return msg, failed
}

func nextValue(kind model.FieldType, prior model.FieldValue, evt model.ChangeEvent) model.FieldValue {
	switch kind {
	case model.FieldTypeCheckbox:
		return prior.Toggle(evt.RawValue, evt.Checked)
	case model.FieldTypeFile:
		if len(evt.Files) == 0 {
			return model.None()
		}
		return model.File(evt.Files[0])
	default:
		return model.Text(evt.RawValue)
	}
}

// ValidateField revalidates the current value of a declared field, as when a
// widget is left without a change, and records the result. Undeclared ids
// report no error.
func (s *Store) ValidateField(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	field, ok := s.schema.Field(id)
	if !ok {
		return "", false
	}
	msg, failed := s.engine.Validate(field, s.values.Get(id))
	if failed {
		s.errors[id] = msg
	} else {
		delete(s.errors, id)
	}
	return msg, failed
}

// ApplyErrors records messages produced outside the engine, such as a
// remote rejection of a submitted payload. Ids the schema does not declare
// are skipped.
func (s *Store) ApplyErrors(errs map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, msg := range errs {
		if _, ok := s.schema.Field(id); !ok || msg == "" {
			continue
		}
		s.errors[id] = msg
	}
}

// ValidateAll validates every declared field in order. Fields never touched
// are validated as absent. Only failing ids appear in the result.
func (s *Store) ValidateAll() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.ValidateAll(s.schema.Fields, s.values)
}

// Submit replaces the errors with a full validation pass. When nothing fails
// the values snapshot goes to the Submitter. A rejected submission is not an
// error; a Submitter failure is.
func (s *Store) Submit(ctx context.Context) (Submission, error) {
	s.mu.Lock()
	errs := s.engine.ValidateAll(s.schema.Fields, s.values)
	s.errors = errs
	result := Submission{Accepted: len(errs) == 0, Errors: cloneErrors(errs)}
	if result.Accepted {
		result.Payload = s.values.Clone()
	}
	submitter := s.submitter
	s.mu.Unlock()

	if !result.Accepted {
		s.logger.Info("state: submission rejected", "errors", len(result.Errors))
		return result, nil
	}
	s.logger.Info("state: submission accepted", "fields", len(result.Payload))

	if submitter == nil {
		return result, nil
	}
	if err := submitter.Submit(ctx, result.Payload); err != nil {
		return result, fmt.Errorf("state: submit: %w", err)
	}
	return result, nil
}

// ReplaceSchema parses text and, on success, makes it the active schema. On
// failure the store is left exactly as it was.
func (s *Store) ReplaceSchema(text string) error {
	next, err := s.parse(text)
	if err != nil {
		s.logger.Warn("state: schema replacement rejected", "error", err)
		return err
	}
	s.SetSchema(next)
	return nil
}

// SetSchema replaces the active schema wholesale and reseeds the editor text
// from it. Values and errors are kept.
func (s *Store) SetSchema(next model.FormSchema) {
	text := s.serialize(next)

	s.mu.Lock()
	s.schema = next.Clone()
	s.editorText = text
	s.editorErr = nil
	s.mu.Unlock()

	s.logger.Info("state: schema replaced", "title", next.FormTitle, "fields", len(next.Fields))
}

// EditSchemaText records the editor contents as typed. When the text parses,
// it becomes the active schema and errors are cleared. When it does not, the
// parse error is returned and the active schema stays in effect; the typed
// text is kept either way.
func (s *Store) EditSchemaText(text string) error {
	next, err := s.parse(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.editorText = text
	s.editorErr = err
	if err != nil {
		s.logger.Debug("state: editor text does not parse", "error", err)
		return err
	}
	s.schema = next.Clone()
	s.errors = make(map[string]string)
	s.logger.Debug("state: schema replaced from editor", "fields", len(next.Fields))
	return nil
}

// Schema returns a copy of the active schema.
func (s *Store) Schema() model.FormSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema.Clone()
}

// Values returns a copy of the value map, stale entries included.
func (s *Store) Values() model.Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Clone()
}

// Errors returns a copy of the error map, stale entries included.
func (s *Store) Errors() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneErrors(s.errors)
}

// Value returns the value stored for id, or model.None().
func (s *Store) Value(id string) model.FieldValue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Get(id)
}

// Error returns the error stored for id.
func (s *Store) Error(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.errors[id]
	return msg, ok
}

// EditorText returns the live editor contents.
func (s *Store) EditorText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editorText
}

// EditorError reports why the editor text does not parse, or nil.
func (s *Store) EditorError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.editorErr
}

// Snapshot copies all state under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Schema:     s.schema.Clone(),
		Values:     s.values.Clone(),
		Errors:     cloneErrors(s.errors),
		EditorText: s.editorText,
		EditorErr:  s.editorErr,
	}
}

// ToggleMode reports the configured checkbox validation timing.
func (s *Store) ToggleMode() ToggleValidation {
	return s.toggle
}

func (s *Store) serialize(form model.FormSchema) string {
	text, err := schema.Serialize(form)
	if err != nil {
		s.logger.Error("state: serialize schema", "error", err)
		return ""
	}
	return text
}

func cloneErrors(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
