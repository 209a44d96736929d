// Package modelform turns declarative model schemas into HTML form schemas,
// binds submissions against them, and persists bound forms as transactional
// cascade saves. The root package re-exports the orchestrator entry points so
// common flows stay a single import.
package modelform

import (
	"context"
	"io/fs"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-modelform/pkg/convert"
	"github.com/goliatone/go-modelform/pkg/forms"
	"github.com/goliatone/go-modelform/pkg/modelschema"
	"github.com/goliatone/go-modelform/pkg/orchestrator"
	"github.com/goliatone/go-modelform/pkg/persist"
	"github.com/goliatone/go-modelform/pkg/render"
	"github.com/goliatone/go-modelform/pkg/renderers/vanilla"
)

// RenderOptions describes per-request overrides renderers use to prefill
// values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// FieldsOptions controls field selection and nesting during conversion.
type FieldsOptions = convert.FieldsOptions

// Request names the inputs for one orchestrator call.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML loads the model document at path, builds a form schema for the
// named model, and renders it with the named renderer. It is the simplest
// entry point for callers that just want HTML output.
func GenerateHTML(ctx context.Context, path, model, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Path:     path,
		Model:    model,
		Renderer: rendererName,
	})
}

// GenerateHTMLFromDocument renders a form from a pre-loaded document,
// bypassing the file read while still delegating to the orchestrator.
func GenerateHTMLFromDocument(ctx context.Context, doc modelschema.Document, model, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Document: &doc,
		Model:    model,
		Renderer: rendererName,
	})
}

// SchemaFor builds the bindable form schema for the named model without
// rendering. Callers binding a submission pair this with forms.Bind and a
// persist.Coordinator.
func SchemaFor(ctx context.Context, path, model string, options ...orchestrator.Option) (*forms.Schema, error) {
	gen := orchestrator.New(options...)
	return gen.Schema(ctx, orchestrator.Request{Path: path, Model: model})
}

// NewCoordinator wires a persist store and model registry into a cascade-save
// coordinator.
func NewCoordinator(store persist.Store, registry *modelschema.Registry) (*persist.Coordinator, error) {
	return persist.NewCoordinator(store, registry)
}

// WithTheme forwards a resolved go-theme renderer configuration to the
// orchestrator.
func WithTheme(cfg *theme.RendererConfig) orchestrator.Option {
	return orchestrator.WithTheme(cfg)
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme and variant choices resolve ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector, name, variant)
}

// EmbeddedTemplates exposes the built-in vanilla renderer templates so
// callers can reuse or extend them without importing the renderer package
// directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// EmbeddedAssets exposes the vanilla renderer's static assets, typically
// mounted behind http.FileServerFS.
func EmbeddedAssets() fs.FS {
	return vanilla.AssetsFS()
}
