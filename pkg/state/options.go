package state

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/validation"
)

// ToggleValidation selects which value a checkbox-group change is validated
// against.
type ToggleValidation int

const (
	// PostToggle validates the set after the toggle is applied.
	PostToggle ToggleValidation = iota
	// PreToggle validates the set as it was before the toggle, matching
	// form engines that read state before the update is committed.
	PreToggle
)

// ParseToggleValidation maps "pre"/"post" (case-sensitive) to a mode.
func ParseToggleValidation(s string) (ToggleValidation, bool) {
	switch s {
	case "post", "":
		return PostToggle, true
	case "pre":
		return PreToggle, true
	default:
		return PostToggle, false
	}
}

func (t ToggleValidation) String() string {
	if t == PreToggle {
		return "pre"
	}
	return "post"
}

// Submitter receives the values of an accepted submission.
type Submitter interface {
	Submit(ctx context.Context, payload model.Values) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, payload model.Values) error

func (f SubmitterFunc) Submit(ctx context.Context, payload model.Values) error {
	return f(ctx, payload)
}

// Parser turns schema text into a FormSchema.
type Parser func(text string) (model.FormSchema, error)

// Option configures a Store.
type Option func(*Store)

// WithSubmitter sets the collaborator notified of accepted submissions.
func WithSubmitter(s Submitter) Option {
	return func(st *Store) {
		st.submitter = s
	}
}

// WithLogger overrides slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(st *Store) {
		if logger != nil {
			st.logger = logger
		}
	}
}

// WithToggleValidation picks the checkbox-group validation timing.
func WithToggleValidation(mode ToggleValidation) Option {
	return func(st *Store) {
		st.toggle = mode
	}
}

// WithParser replaces schema.Parse for ReplaceSchema and EditSchemaText.
func WithParser(p Parser) Option {
	return func(st *Store) {
		if p != nil {
			st.parse = p
		}
	}
}

// WithValidator swaps the validation engine, e.g. to change the pattern
// match timeout.
func WithValidator(engine *validation.Engine) Option {
	return func(st *Store) {
		if engine != nil {
			st.engine = engine
		}
	}
}
