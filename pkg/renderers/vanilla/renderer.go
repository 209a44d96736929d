// Package vanilla renders form schemas as dependency-free HTML: native
// controls, minimal chrome, and a small embedded stylesheet.
package vanilla

import (
	"context"
	"fmt"
	"html"
	"io/fs"
	"os"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-modelform/pkg/forms"
	"github.com/goliatone/go-modelform/pkg/render"
	rendertemplate "github.com/goliatone/go-modelform/pkg/render/template"
	"github.com/goliatone/go-modelform/pkg/render/template/gotemplate"
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	sanitizer        *bluemonday.Policy
}

// WithTemplatesFS supplies an alternate chrome template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads chrome templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithSanitizer overrides the policy applied to field help text.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.sanitizer = policy
		}
	}
}

// Renderer is the built-in HTML renderer.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	sanitizer *bluemonday.Policy
}

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.sanitizer == nil {
		cfg.sanitizer = bluemonday.UGCPolicy()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template engine: %w", err)
		}
		templates = engine
	}

	return &Renderer{templates: templates, sanitizer: cfg.sanitizer}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws the schema's fields and wraps them in the form chrome.
func (r *Renderer) Render(_ context.Context, schema *forms.Schema, options render.RenderOptions) ([]byte, error) {
	if schema == nil {
		return nil, fmt.Errorf("vanilla renderer: schema is nil")
	}
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template engine is nil")
	}

	fields, err := newFieldRenderer(options, r.sanitizer).renderAll(schema, "")
	if err != nil {
		return nil, err
	}

	if hidden := hiddenInputs(options.Hidden); hidden != "" {
		fields = hidden + fields
	}

	browserMethod, methodOverride := splitMethod(options.Method)

	data := map[string]any{
		"form_name":       schema.Name,
		"action":          options.Action,
		"browser_method":  browserMethod,
		"method_override": methodOverride,
		"fields":          fields,
	}
	applyTheme(data, options.Theme)

	result, err := r.templates.RenderTemplate("templates/form.tmpl", data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render chrome: %w", err)
	}
	return []byte(result), nil
}

func hiddenInputs(fields map[string]string) string {
	sorted := render.SortedHiddenFields(fields)
	if len(sorted) == 0 {
		return ""
	}
	var b strings.Builder
	for _, field := range sorted {
		fmt.Fprintf(&b, "<input type=\"hidden\" name=\"%s\" value=\"%s\">\n",
			html.EscapeString(field.Name), html.EscapeString(field.Value))
	}
	return b.String()
}

// splitMethod maps an HTTP verb onto what browsers can submit: GET and POST
// pass through, everything else becomes POST plus a hidden _method value.
func splitMethod(method string) (browser, override string) {
	verb := strings.ToUpper(strings.TrimSpace(method))
	switch verb {
	case "", "POST":
		return "post", ""
	case "GET":
		return "get", ""
	default:
		return "post", verb
	}
}

func applyTheme(data map[string]any, cfg *theme.RendererConfig) {
	if cfg == nil {
		return
	}
	class := strings.TrimSpace(cfg.Theme)
	if cfg.Variant != "" {
		class += " " + cfg.Variant
	}
	data["theme_class"] = strings.TrimSpace(class)
	data["css_vars_style"] = cssVarsStyle(cfg.CSSVars)
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString("; ")
	}
	b.WriteString("}")
	return b.String()
}
