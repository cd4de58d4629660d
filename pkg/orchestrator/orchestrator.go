package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-dynform/pkg/fileio"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/validation"
)

const defaultRendererName = "vanilla"

// ErrLint is returned by Generate when strict linting finds error-severity
// issues.
var ErrLint = errors.New("orchestrator: schema has lint errors")

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithReader injects the reader used for Request.Source.
func WithReader(reader *fileio.Reader) Option {
	return func(o *Orchestrator) {
		o.reader = reader
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithSchemaTransformer registers transformers that run, in order, after the
// schema is decoded and before it is linted.
func WithSchemaTransformer(transformers ...Transformer) Option {
	return func(o *Orchestrator) {
		for _, t := range transformers {
			if t != nil {
				o.transformers = append(o.transformers, t)
			}
		}
	}
}

// WithThemeSet resolves Request.ThemeName and Request.Variant into render
// options when the request carries no theme of its own.
func WithThemeSet(themes *render.ThemeSet) Option {
	return func(o *Orchestrator) {
		o.themes = themes
	}
}

// WithStrictLint makes Generate fail with ErrLint when the schema has
// error-severity lint issues. Warnings are only logged.
func WithStrictLint(strict bool) Option {
	return func(o *Orchestrator) {
		o.strict = strict
	}
}

// WithLogger sets the logger used for lint findings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator renders a schema from a source in one call. It applies
// defaults (a local-only reader, the vanilla renderer, the built-in themes)
// while remaining open to dependency injection.
type Orchestrator struct {
	reader          *fileio.Reader
	registry        *render.Registry
	defaultRenderer string
	transformers    []Transformer
	themes          *render.ThemeSet
	strict          bool
	logger          *slog.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one render.
type Request struct {
	// Source identifies where the schema document lives. Optional when Schema
	// is supplied.
	Source fileio.Source

	// Schema bypasses reading and decoding. It is cloned before transformers
	// run.
	Schema *model.FormSchema

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// ThemeName and Variant select a theme when RenderOptions.Theme is nil.
	ThemeName string
	Variant   string

	// RenderOptions carries values, errors, notices and the like.
	RenderOptions render.RenderOptions
}

// Generate resolves the schema and renders it.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	form, err := o.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	opts := req.RenderOptions
	if opts.Theme == nil && o.themes != nil {
		cfg, err := o.themes.Config(req.ThemeName, req.Variant)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: resolve theme: %w", err)
		}
		opts.Theme = cfg
	}

	output, err := renderer.Render(ctx, form, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Resolve reads, decodes, transforms and lints the request's schema without
// rendering it.
func (o *Orchestrator) Resolve(ctx context.Context, req Request) (model.FormSchema, error) {
	form, err := o.resolveSchema(ctx, req)
	if err != nil {
		return model.FormSchema{}, err
	}
	if err := o.applyTransformers(ctx, &form); err != nil {
		return model.FormSchema{}, err
	}
	if err := o.lint(form); err != nil {
		return model.FormSchema{}, err
	}
	return form, nil
}

func (o *Orchestrator) resolveSchema(ctx context.Context, req Request) (model.FormSchema, error) {
	if req.Schema != nil {
		return req.Schema.Clone(), nil
	}
	if req.Source == nil {
		return model.FormSchema{}, errors.New("orchestrator: source or schema is required")
	}
	text, err := o.reader.ReadText(ctx, req.Source)
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("orchestrator: read schema: %w", err)
	}
	form, err := schema.Decode(req.Source.Location(), []byte(text))
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("orchestrator: decode schema: %w", err)
	}
	return form, nil
}

func (o *Orchestrator) applyTransformers(ctx context.Context, form *model.FormSchema) error {
	for _, t := range o.transformers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.Transform(ctx, form); err != nil {
			return fmt.Errorf("orchestrator: transform schema: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) lint(form model.FormSchema) error {
	result := validation.Lint(form)
	for _, issue := range result.Warnings() {
		o.logger.Warn("orchestrator: schema lint", "issue", issue.String())
	}
	errs := result.Errors()
	if len(errs) == 0 {
		return nil
	}
	for _, issue := range errs {
		o.logger.Error("orchestrator: schema lint", "issue", issue.String())
	}
	if o.strict {
		return fmt.Errorf("%w: %s", ErrLint, errs[0].String())
	}
	return nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.reader == nil {
		o.reader = fileio.NewReader()
	}
	if o.registry == nil {
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
			o.registry = render.NewRegistry()
		} else {
			o.registry = render.NewRegistry(renderer)
		}
	}
	if o.themes == nil {
		themes, err := render.NewThemeSet()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default themes: %w", err)
		} else {
			o.themes = themes
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
