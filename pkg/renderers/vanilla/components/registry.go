package components

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-dynform/pkg/render"
	rendertemplate "github.com/goliatone/go-dynform/pkg/render/template"
)

// Renderer writes the HTML for one widget into buf.
type Renderer func(buf *bytes.Buffer, widget render.Widget, data ComponentData) error

// ComponentData carries helpers and configuration for component renderers.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	// Partials maps partial keys ("forms.input", ...) to template overrides,
	// usually the active theme's.
	Partials map[string]string
	// NoOptions is the text shown by choice groups that have no options.
	NoOptions string
	Config    map[string]any
}

// Script is a JavaScript dependency emitted once per page. Src takes
// precedence over Inline.
type Script struct {
	Src    string
	Inline string
	Defer  bool
	Module bool
}

func (s Script) key() string {
	if s.Src != "" {
		return "src:" + s.Src
	}
	return "inline:" + s.Inline
}

// Component is a named widget renderer plus the page assets it needs.
type Component struct {
	Name        string
	Render      Renderer
	Stylesheets []string
	Scripts     []Script
}

// ErrNoComponent is returned when nothing is registered to draw a widget.
var ErrNoComponent = errors.New("components: no component registered")

// Registry holds components by name and routes each widget kind to the
// component that draws it. Kinds without a route use the input component.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Component
	byKind map[render.WidgetKind]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]Component),
		byKind: make(map[render.WidgetKind]string),
	}
}

// Register adds or replaces a component and routes the given widget kinds to
// it.
func (r *Registry) Register(component Component, kinds ...render.WidgetKind) error {
	name := normalize(component.Name)
	if name == "" {
		return fmt.Errorf("components: component name is required")
	}
	if component.Render == nil {
		return fmt.Errorf("components: renderer for %q is nil", name)
	}

	component.Name = name
	component.Stylesheets = slices.Clone(component.Stylesheets)
	component.Scripts = slices.Clone(component.Scripts)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = component
	for _, kind := range kinds {
		r.byKind[kind] = name
	}
	return nil
}

// MustRegister is Register for default set up; it panics on error.
func (r *Registry) MustRegister(component Component, kinds ...render.WidgetKind) {
	if err := r.Register(component, kinds...); err != nil {
		panic(err)
	}
}

// Lookup returns a copy of the named component.
func (r *Registry) Lookup(name string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	component, ok := r.byName[normalize(name)]
	if !ok {
		return Component{}, false
	}
	component.Stylesheets = slices.Clone(component.Stylesheets)
	component.Scripts = slices.Clone(component.Scripts)
	return component, true
}

// NameFor reports which component draws kind.
func (r *Registry) NameFor(kind render.WidgetKind) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.byKind[kind]; ok {
		return name
	}
	return NameInput
}

// Names returns the registered component names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Draw renders widget with the component routed to its kind and returns the
// HTML together with the component name.
func (r *Registry) Draw(widget render.Widget, data ComponentData) (string, string, error) {
	name := r.NameFor(widget.Kind)
	html, err := r.DrawWith(name, widget, data)
	return html, name, err
}

// DrawWith renders widget with the named component.
func (r *Registry) DrawWith(name string, widget render.Widget, data ComponentData) (string, error) {
	component, ok := r.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q for field %q", ErrNoComponent, name, widget.FieldID)
	}
	var buf bytes.Buffer
	if err := component.Render(&buf, widget, data); err != nil {
		return "", fmt.Errorf("components: %s for field %q: %w", component.Name, widget.FieldID, err)
	}
	return buf.String(), nil
}

// Assets gathers the stylesheets and scripts of the named components in
// first-use order, each emitted once. Unknown names are skipped.
func (r *Registry) Assets(names []string) ([]string, []Script) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		stylesheets []string
		scripts     []Script
	)
	seen := make(map[string]bool)
	for _, name := range names {
		component, ok := r.byName[normalize(name)]
		if !ok {
			continue
		}
		for _, href := range component.Stylesheets {
			if href != "" && !seen["css:"+href] {
				seen["css:"+href] = true
				stylesheets = append(stylesheets, href)
			}
		}
		for _, script := range component.Scripts {
			if key := script.key(); !seen[key] {
				seen[key] = true
				scripts = append(scripts, script)
			}
		}
	}
	return stylesheets, scripts
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
