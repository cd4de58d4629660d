package render

import (
	"context"

	"github.com/goliatone/go-dynform/pkg/model"
)

// Renderer turns a schema plus the current form state into a document for
// some surface (an HTML page, a terminal session, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, schema model.FormSchema, options RenderOptions) ([]byte, error)
}
