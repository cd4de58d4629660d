package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-dynform/pkg/fileio"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/render"
	rendertemplate "github.com/goliatone/go-dynform/pkg/render/template"
	"github.com/goliatone/go-dynform/pkg/render/template/pongo"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla/components"
)

const (
	pageTemplate     = "templates/page.tmpl"
	fragmentTemplate = "templates/fields.tmpl"
)

// Actions are the URLs the page posts to. An empty LiveEditor disables the
// websocket editor script.
type Actions struct {
	Submit     string
	Import     string
	Export     string
	Editor     string
	Theme      string
	LiveEditor string
}

// DefaultActions matches the routes of the bundled HTTP server.
func DefaultActions() Actions {
	return Actions{
		Submit:     "/submit",
		Import:     "/schema/import",
		Export:     "/schema/export",
		Editor:     "/schema/editor",
		Theme:      "/theme",
		LiveEditor: "/ws",
	}
}

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *components.Registry
	actions          Actions
	sanitizer        *bluemonday.Policy
	stylesheets      []string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default widget components.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithActions overrides the form targets.
func WithActions(actions Actions) Option {
	return func(cfg *config) {
		cfg.actions = actions
	}
}

// WithSanitizer replaces the policy applied to the rendered description.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.sanitizer = policy
		}
	}
}

// WithStylesheet links an extra stylesheet after the theme's.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if href != "" {
			cfg.stylesheets = append(cfg.stylesheets, href)
		}
	}
}

// Renderer draws a form schema as a complete HTML page, or as the field
// widgets alone when RenderOptions.Fragment is set.
type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	components  *components.Registry
	actions     Actions
	sanitizer   *bluemonday.Policy
	stylesheets []string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), actions: DefaultActions()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.components == nil {
		cfg.components = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:   renderer,
		components:  cfg.components,
		actions:     cfg.actions,
		sanitizer:   cfg.sanitizer,
		stylesheets: cfg.stylesheets,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Actions reports the endpoints the page posts to.
func (r *Renderer) Actions() Actions {
	return r.actions
}

// Description renders a form description the way the page does: markdown
// converted to HTML and sanitized.
func (r *Renderer) Description(text string) string {
	return renderDescription(text, r.sanitizer)
}

// Render localizes and trims the schema per options, dispatches every field
// to its widget component and lays the widgets out in the page template.
// Values and errors for undeclared ids are ignored.
func (r *Renderer) Render(ctx context.Context, form model.FormSchema, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	schema := form.Clone()
	render.LocalizeSchema(&schema, options)
	render.ApplySubset(&schema, options.Subset)

	partials := map[string]string(nil)
	if options.Theme != nil {
		partials = options.Theme.Partials
	}
	data := components.ComponentData{
		Template:  r.templates,
		Partials:  partials,
		NoOptions: options.Message(render.MsgNoOptions),
	}

	widgets := render.DispatchAll(schema, options.Values, render.VisibleErrors(schema, options.Errors))
	fields := make([]string, 0, len(widgets))
	used := make([]string, 0, len(widgets)+1)
	for _, widget := range widgets {
		html, name, err := r.components.Draw(widget, data)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		fields = append(fields, html)
		used = append(used, name)
	}

	if options.Fragment {
		result, err := r.templates.RenderTemplate(fragmentTemplate, map[string]any{"fields": fields})
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
		}
		return []byte(result), nil
	}

	hidden := hiddenData(options.HiddenFields)
	editorData := data
	editorData.Config = map[string]any{
		"action":   r.actions.Editor,
		"live_url": r.actions.LiveEditor,
		"apply":    options.Message(render.MsgEditorApply),
		"hidden":   hidden,
	}
	editor, err := r.components.DrawWith(components.NameSchemaEditor, render.Widget{
		Kind:    render.WidgetTextArea,
		FieldID: components.EditorFieldID,
		Label:   options.Message(render.MsgEditorTitle),
		Text:    options.EditorText,
		Error:   options.EditorError,
	}, editorData)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	used = append(used, components.NameSchemaEditor)

	stylesheets, scripts := r.components.Assets(used)
	payload := map[string]any{
		"lang":             langOrDefault(options.Locale),
		"app_title":        options.Message(render.MsgAppTitle),
		"title":            schema.FormTitle,
		"description_html": renderDescription(schema.FormDescription, r.sanitizer),
		"fields":           fields,
		"submit_label":     options.Message(render.MsgSubmit),
		"notices":          noticeData(options.Notices),
		"hidden":           hidden,
		"editor_html":      editor,
		"import_label":     options.Message(render.MsgImportLabel),
		"import_button":    options.Message(render.MsgImportButton),
		"export_label":     options.Message(render.MsgExportButton),
		"export_name":      fileio.DefaultExportName,
		"actions":          actionData(r.actions),
		"theme":            themeData(options),
		"stylesheets":      append(append(themeStylesheets(options), r.stylesheets...), stylesheets...),
		"scripts":          scriptData(scripts),
	}

	result, err := r.templates.RenderTemplate(pageTemplate, payload)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
