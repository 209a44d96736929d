package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-modelform/pkg/forms"
)

// RenderOptions carries per-request data renderers can use without mutating
// the schema.
type RenderOptions struct {
	// Action and Method populate the form element. Renderers translate
	// non-browser verbs (PUT/PATCH/DELETE) into POST plus a hidden _method
	// input.
	Action string
	Method string

	// Values pre-populates rendered controls, keyed by submitted input name
	// (nested entries use the dash-prefixed form: entries-0-title).
	Values map[string]any

	// Errors surfaces validation feedback keyed the same way, typically the
	// output of Form.Errors after a failed submission.
	Errors map[string][]string

	// Hidden adds extra hidden inputs (CSRF tokens, version fields) to the
	// rendered form. See MergeHiddenFields and the HiddenField helpers.
	Hidden map[string]string

	// ModelChoices supplies option lists for modelselect fields, keyed by
	// field name. The caller loads them from storage; renderers only draw
	// what they are given.
	ModelChoices map[string][]forms.Choice

	// Theme optionally restyles the output.
	Theme *theme.RendererConfig
}
