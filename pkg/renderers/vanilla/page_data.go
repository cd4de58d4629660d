package vanilla

import (
	"strings"

	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/vanilla/components"
)

func langOrDefault(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return "en"
	}
	return locale
}

func hiddenData(fields map[string]string) []map[string]any {
	sorted := render.SortedHiddenFields(fields)
	out := make([]map[string]any, 0, len(sorted))
	for _, field := range sorted {
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}

func noticeData(notices []render.Notice) []map[string]any {
	out := make([]map[string]any, 0, len(notices))
	for _, notice := range notices {
		if strings.TrimSpace(notice.Message) == "" {
			continue
		}
		level := notice.Level
		if level == "" {
			level = render.NoticeInfo
		}
		out = append(out, map[string]any{"level": string(level), "message": notice.Message})
	}
	return out
}

func actionData(actions Actions) map[string]any {
	return map[string]any{
		"submit": actions.Submit,
		"import": actions.Import,
		"export": actions.Export,
		"editor": actions.Editor,
		"theme":  actions.Theme,
	}
}

// themeData exposes the active variant, its CSS variables and the label of
// the toggle, which names the mode it switches to.
func themeData(options render.RenderOptions) map[string]any {
	cfg := options.Theme
	variant := render.VariantLight
	name := ""
	css := ""
	if cfg != nil {
		name = cfg.Theme
		if cfg.Variant != "" {
			variant = cfg.Variant
		}
		css = render.CSSVarsStyle(cfg.CSSVars)
	}

	dark := render.IsDark(cfg)
	label := options.Message(render.MsgThemeDark)
	if dark {
		label = options.Message(render.MsgThemeLight)
	}
	return map[string]any{
		"name":           name,
		"variant":        variant,
		"dark":           dark,
		"css":            css,
		"toggle_label":   label,
		"toggle_variant": render.ToggleVariant(variant),
	}
}

func themeStylesheets(options render.RenderOptions) []string {
	if options.Theme == nil || options.Theme.AssetURL == nil {
		return nil
	}
	if href := options.Theme.AssetURL("stylesheet"); href != "" {
		return []string{href}
	}
	return nil
}

func scriptData(scripts []components.Script) []map[string]any {
	out := make([]map[string]any, 0, len(scripts))
	for _, script := range scripts {
		out = append(out, map[string]any{
			"src":    script.Src,
			"inline": script.Inline,
			"defer":  script.Defer,
			"module": script.Module,
		})
	}
	return out
}
