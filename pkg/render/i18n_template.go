package render

// TemplateI18nFuncs returns helpers for template engines that accept
// callable globals:
//
//	translate(key, ...args) string
//	current_locale() string
func TemplateI18nFuncs(opts RenderOptions) map[string]any {
	return map[string]any{
		"translate": func(key string, args ...any) string {
			return opts.Message(key, args...)
		},
		"current_locale": func() string {
			return opts.Locale
		},
	}
}
