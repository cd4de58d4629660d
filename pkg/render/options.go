package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-dynform/pkg/model"
)

// NoticeLevel classifies a user-visible notice.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a one-off message for the user, such as the outcome of a schema
// import or of a submission.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// RenderOptions carry the form state and presentation settings for one
// render. The schema itself is passed separately.
type RenderOptions struct {
	// Values holds the current field values keyed by field id. Ids the schema
	// does not declare are ignored.
	Values model.Values
	// Errors holds the current validation messages keyed by field id.
	Errors map[string]string
	// EditorText is the live schema editor contents, which may not parse.
	EditorText string
	// EditorError describes why EditorText does not parse, if it does not.
	EditorError string
	// Notices are shown once above the form.
	Notices []Notice
	// Theme selects light/dark tokens for renderers that support theming.
	Theme *theme.RendererConfig
	// Subset restricts rendering to some fields.
	Subset FieldSubset
	// HiddenFields are emitted with the form post (e.g. a CSRF token).
	HiddenFields map[string]string
	// Fragment asks for the widgets only, without page chrome.
	Fragment bool

	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
}
