package vanilla

import (
	"strings"
	"sync"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	descriptionPolicyOnce sync.Once
	descriptionPolicy     *bluemonday.Policy
)

// descriptionSanitizer allows the markup markdown produces and nothing that
// can run script.
func descriptionSanitizer() *bluemonday.Policy {
	descriptionPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		descriptionPolicy = policy
	})
	return descriptionPolicy
}

// renderDescription turns the form description into sanitized HTML. Plain
// text comes out as a single paragraph.
func renderDescription(text string, policy *bluemonday.Policy) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if policy == nil {
		policy = descriptionSanitizer()
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.SkipHTML})
	rendered := markdown.ToHTML([]byte(trimmed), p, r)
	return strings.TrimSpace(string(policy.SanitizeBytes(rendered)))
}
