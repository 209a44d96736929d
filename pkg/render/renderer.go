package render

import (
	"context"

	"github.com/goliatone/go-modelform/pkg/forms"
)

// Renderer turns a form schema into a byte representation (HTML, text, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, schema *forms.Schema, options RenderOptions) ([]byte, error)
}
