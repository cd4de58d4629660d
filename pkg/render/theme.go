package render

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Theme names and variants shipped with the module.
const (
	DefaultThemeName = "dynform"
	VariantLight     = "light"
	VariantDark      = "dark"
)

// DefaultThemeManifest is the built-in light/dark palette. Tokens become CSS
// custom properties ("--bg", "--fg", ...) in the HTML renderer.
func DefaultThemeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"bg":         "#ffffff",
			"fg":         "#1f2328",
			"muted":      "#57606a",
			"border":     "#d0d7de",
			"accent":     "#0969da",
			"error":      "#cf222e",
			"notice-bg":  "#ddf4ff",
			"input-bg":   "#ffffff",
			"font-stack": "system-ui, sans-serif",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				"stylesheet": "dynform.css",
			},
		},
		Variants: map[string]theme.Variant{
			VariantLight: {},
			VariantDark: {
				Tokens: map[string]string{
					"bg":        "#0d1117",
					"fg":        "#e6edf3",
					"muted":     "#8d96a0",
					"border":    "#30363d",
					"accent":    "#4493f8",
					"error":     "#f85149",
					"notice-bg": "#121d2f",
					"input-bg":  "#161b22",
				},
			},
		},
	}
}

// ThemeSet is a fixed set of manifests that resolves theme selections.
type ThemeSet struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*ThemeSet)(nil)

// NewThemeSet registers the manifests with a go-theme registry, which
// validates them, and keeps them for selection. The first manifest is the
// default theme. With no manifests the built-in one is used.
func NewThemeSet(manifests ...*theme.Manifest) (*ThemeSet, error) {
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultThemeManifest()}
	}
	registry := theme.NewRegistry()
	set := &ThemeSet{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultVariant: VariantLight,
	}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("render: register theme %q: %w", manifest.Name, err)
		}
		set.manifests[manifest.Name] = manifest
		if set.defaultTheme == "" {
			set.defaultTheme = manifest.Name
		}
	}
	if set.defaultTheme == "" {
		return nil, fmt.Errorf("render: no theme manifests")
	}
	return set, nil
}

// Select resolves name and variant, defaulting either when blank. Unknown
// variants of a known theme fall back to the theme's base tokens.
func (s *ThemeSet) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultTheme
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("render: unknown theme %q", name)
	}
	variant = strings.ToLower(strings.TrimSpace(variant))
	if variant == "" {
		variant = s.defaultVariant
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Config selects a theme and flattens it into a renderer config.
func (s *ThemeSet) Config(name, variant string) (*theme.RendererConfig, error) {
	selection, err := s.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return ThemeConfig(selection), nil
}

// ThemeConfig merges the selection's variant over its manifest: tokens,
// template partials and asset files of the variant win. Every token is also
// exposed as a "--token" CSS variable.
func ThemeConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	variant := manifest.Variants[selection.Variant]

	tokens := make(map[string]string, len(manifest.Tokens)+len(variant.Tokens))
	maps.Copy(tokens, manifest.Tokens)
	maps.Copy(tokens, variant.Tokens)

	partials := make(map[string]string, len(manifest.Templates)+len(variant.Templates))
	maps.Copy(partials, manifest.Templates)
	maps.Copy(partials, variant.Templates)

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	prefix := manifest.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}
	files := make(map[string]string, len(manifest.Assets.Files)+len(variant.Assets.Files))
	maps.Copy(files, manifest.Assets.Files)
	maps.Copy(files, variant.Assets.Files)

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok {
				return ""
			}
			return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
		},
	}
}

// IsDark reports whether cfg is the dark variant.
func IsDark(cfg *theme.RendererConfig) bool {
	return cfg != nil && strings.EqualFold(cfg.Variant, VariantDark)
}

// ToggleVariant returns the variant the theme toggle switches to.
func ToggleVariant(variant string) string {
	if strings.EqualFold(variant, VariantDark) {
		return VariantLight
	}
	return VariantDark
}

// CSSVarsStyle renders vars as a :root rule with sorted declarations.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}
