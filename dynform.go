// Package dynform renders interactive forms from a declarative schema. The
// root package re-exports the common entry points; the pkg/ subpackages hold
// the schema model, validation, the state store, renderers and sessions.
package dynform

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-dynform/pkg/fileio"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/orchestrator"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/tui"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/session"
	"github.com/goliatone/go-dynform/pkg/state"
)

// FormSchema is the decoded schema document.
type FormSchema = model.FormSchema

// RenderOptions describes per-render state such as values, errors and the
// theme.
type RenderOptions = render.RenderOptions

// FieldSubset aliases render.FieldSubset for callers rendering some fields.
type FieldSubset = render.FieldSubset

// LoadSchema reads src and decodes it as JSON or YAML depending on its name.
func LoadSchema(ctx context.Context, src fileio.Source, options ...fileio.Option) (FormSchema, error) {
	text, err := fileio.NewReader(options...).ReadText(ctx, src)
	if err != nil {
		return FormSchema{}, err
	}
	return schema.Decode(src.Location(), []byte(text))
}

// ParseSchema decodes a JSON schema document.
func ParseSchema(text string) (FormSchema, error) {
	return schema.Parse(text)
}

// DefaultSchema returns the built-in example schema.
func DefaultSchema() FormSchema {
	return schema.Default()
}

// NewStore constructs the form state container seeded with initial.
func NewStore(initial FormSchema, options ...state.Option) *state.Store {
	return state.New(initial, options...)
}

// NewSession wraps a store with import, export and submit notices.
func NewSession(initial FormSchema, options ...session.Option) *session.Session {
	return session.New(initial, options...)
}

// NewHTMLRenderer constructs the HTML renderer.
func NewHTMLRenderer(options ...vanilla.Option) (*vanilla.Renderer, error) {
	return vanilla.New(options...)
}

// NewTUIRenderer constructs the terminal renderer.
func NewTUIRenderer(options ...tui.Option) (*tui.Renderer, error) {
	return tui.New(options...)
}

// NewRegistry returns a registry holding the HTML and terminal renderers.
func NewRegistry() (*render.Registry, error) {
	html, err := vanilla.New()
	if err != nil {
		return nil, fmt.Errorf("dynform: html renderer: %w", err)
	}
	terminal, err := tui.New()
	if err != nil {
		return nil, fmt.Errorf("dynform: tui renderer: %w", err)
	}
	return render.NewRegistry(html, terminal), nil
}

// NewOrchestrator exposes the one-shot render pipeline.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML loads the schema at src and renders it with the HTML renderer.
// It is the simplest entry point for callers that just want a page.
func GenerateHTML(ctx context.Context, src fileio.Source, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Source:   src,
		Renderer: "vanilla",
	})
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}
