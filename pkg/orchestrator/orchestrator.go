package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-modelform/pkg/convert"
	"github.com/goliatone/go-modelform/pkg/forms"
	"github.com/goliatone/go-modelform/pkg/modelschema"
	"github.com/goliatone/go-modelform/pkg/render"
	"github.com/goliatone/go-modelform/pkg/renderers/vanilla"
)

const defaultRendererName = "vanilla"

// ChoiceSource supplies (key, label) pairs for modelselect fields, usually
// backed by a persist store.
type ChoiceSource interface {
	ModelChoices(ctx context.Context, model string) ([]forms.Choice, error)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithModels supplies a pre-built model registry, bypassing document parsing
// for requests that omit a document.
func WithModels(registry *modelschema.Registry) Option {
	return func(o *Orchestrator) {
		o.models = registry
	}
}

// WithAdapters injects a custom format-adapter registry.
func WithAdapters(registry *AdapterRegistry) Option {
	return func(o *Orchestrator) {
		o.adapters = registry
	}
}

// WithDefaultFormat names the adapter used when detection is inconclusive.
func WithDefaultFormat(name string) Option {
	return func(o *Orchestrator) {
		o.defaultFormat = name
	}
}

// WithRendererRegistry injects a renderer registry.
func WithRendererRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.renderers = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithConvertOptions forwards converter options (overrides, kind converters,
// labelers) applied to every schema conversion.
func WithConvertOptions(options ...convert.Option) Option {
	return func(o *Orchestrator) {
		o.convertOptions = append(o.convertOptions, options...)
	}
}

// WithChoiceSource registers a source for modelselect choices so rendered
// foreign-key selects list live records.
func WithChoiceSource(source ChoiceSource) Option {
	return func(o *Orchestrator) {
		o.choices = source
	}
}

// WithTheme supplies a resolved renderer theme applied when a request does
// not carry its own.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(o *Orchestrator) {
		o.theme = cfg
	}
}

// WithThemeSelector resolves the named theme and variant through a go-theme
// selector the first time a form is rendered.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
		o.themeName = name
		o.themeVariant = variant
	}
}

// Orchestrator coordinates the pipeline from a model document to rendered
// output. Missing dependencies are initialised with built-in implementations
// so callers can start with a single constructor call.
type Orchestrator struct {
	models          *modelschema.Registry
	adapters        *AdapterRegistry
	defaultFormat   string
	renderers       *render.Registry
	defaultRenderer string
	convertOptions  []convert.Option
	choices         ChoiceSource
	theme           *theme.RendererConfig
	themeSelector   theme.ThemeSelector
	themeName       string
	themeVariant    string
	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{defaultRenderer: defaultRendererName}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs required to build or render a model form.
type Request struct {
	// Document carries a raw model payload. Optional when the orchestrator
	// was configured with a model registry or Path is set.
	Document *modelschema.Document

	// Path loads the model document from disk.
	Path string

	// Format names the adapter to parse the document with. Empty means
	// detect from the payload.
	Format string

	// Model names the registered model to build a form for.
	Model string

	// Renderer names the renderer to use. Empty falls back to the
	// configured default.
	Renderer string

	// Fields overrides the converter field selection. Nil means a full
	// edit form with nested collections.
	Fields *convert.FieldsOptions

	// RenderOptions carries per-request values, errors, and hidden inputs.
	RenderOptions render.RenderOptions
}

// Schema resolves the model registry and converts the requested model into a
// form schema. Callers that bind submissions use this and skip rendering.
func (o *Orchestrator) Schema(ctx context.Context, req Request) (*forms.Schema, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if req.Model == "" {
		return nil, errors.New("orchestrator: model name is required")
	}

	registry, err := o.resolveModels(ctx, req)
	if err != nil {
		return nil, err
	}
	model, ok := registry.Lookup(req.Model)
	if !ok {
		return nil, fmt.Errorf("orchestrator: model %q not found", req.Model)
	}

	options := append(append([]convert.Option(nil), o.convertOptions...), convert.WithRegistry(registry))
	converter := convert.New(options...)

	fields := convert.FieldsOptions{IncludeNested: true}
	if req.Fields != nil {
		fields = *req.Fields
	}

	schema, err := converter.Form(model, fields)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build form schema: %w", err)
	}
	if err := o.attachModelChoices(ctx, schema); err != nil {
		return nil, err
	}
	return schema, nil
}

// attachModelChoices bakes live record choices into modelselect definitions
// so binding validates membership of submitted keys. Each referenced model is
// fetched once per call.
func (o *Orchestrator) attachModelChoices(ctx context.Context, schema *forms.Schema) error {
	if o.choices == nil {
		return nil
	}
	return o.attachSchemaChoices(ctx, schema, make(map[string][]forms.Choice))
}

func (o *Orchestrator) attachSchemaChoices(ctx context.Context, schema *forms.Schema, fetched map[string][]forms.Choice) error {
	for _, def := range schema.Fields() {
		if def.Type == forms.TypeList && def.Nested != nil {
			if err := o.attachSchemaChoices(ctx, def.Nested, fetched); err != nil {
				return err
			}
			continue
		}
		if def.Type != forms.TypeModelSelect || def.Ref == "" || len(def.Choices) > 0 {
			continue
		}
		choices, ok := fetched[def.Ref]
		if !ok {
			var err error
			choices, err = o.choices.ModelChoices(ctx, def.Ref)
			if err != nil {
				return fmt.Errorf("orchestrator: choices for model %q: %w", def.Ref, err)
			}
			fetched[def.Ref] = choices
		}
		schema.SetChoices(def.Name, choices)
	}
	return nil
}

// Generate builds the form schema for the requested model and renders it,
// returning the rendered bytes (HTML for the default vanilla renderer).
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	schema, err := o.Schema(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	options := req.RenderOptions
	if options.Theme == nil {
		cfg, err := o.themeConfig()
		if err != nil {
			return nil, err
		}
		options.Theme = cfg
	}
	if err := o.fillModelChoices(ctx, schema, &options); err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, schema, options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

func (o *Orchestrator) resolveModels(ctx context.Context, req Request) (*modelschema.Registry, error) {
	doc := req.Document
	if doc == nil && req.Path != "" {
		raw, err := os.ReadFile(req.Path)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: read %s: %w", req.Path, err)
		}
		loaded, err := modelschema.NewDocument(modelschema.SourceFromFile(req.Path), raw)
		if err != nil {
			return nil, err
		}
		doc = &loaded
	}
	if doc == nil {
		if o.models == nil {
			return nil, errors.New("orchestrator: models, document, or path is required")
		}
		return o.models, nil
	}

	adapter, err := o.resolveAdapter(req.Format, *doc)
	if err != nil {
		return nil, err
	}
	registry, err := adapter.Parse(ctx, *doc)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parse %s document: %w", adapter.Name(), err)
	}
	return registry, nil
}

func (o *Orchestrator) resolveAdapter(format string, doc modelschema.Document) (SchemaAdapter, error) {
	if o.adapters == nil {
		return nil, errors.New("orchestrator: adapter registry is nil")
	}
	if format != "" {
		return o.adapters.Get(format)
	}

	matches := o.adapters.Detect(doc.Source(), doc.Raw())
	switch len(matches) {
	case 0:
		if o.defaultFormat == "" {
			return nil, errors.New("orchestrator: unable to detect document format, specify one")
		}
		return o.adapters.Get(o.defaultFormat)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, 0, len(matches))
		for _, adapter := range matches {
			names = append(names, adapter.Name())
		}
		return nil, fmt.Errorf("orchestrator: multiple adapters matched payload (%v), specify format", names)
	}
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.renderers == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	if target != "" {
		renderer, err := o.renderers.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.renderers.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	renderer, err := o.renderers.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

// fillModelChoices resolves choices for modelselect fields the request did
// not already provide, walking nested sub-forms too.
func (o *Orchestrator) fillModelChoices(ctx context.Context, schema *forms.Schema, options *render.RenderOptions) error {
	if o.choices == nil {
		return nil
	}
	return o.fillSchemaChoices(ctx, schema, options)
}

func (o *Orchestrator) fillSchemaChoices(ctx context.Context, schema *forms.Schema, options *render.RenderOptions) error {
	for _, def := range schema.Fields() {
		if def.Type == forms.TypeList && def.Nested != nil {
			if err := o.fillSchemaChoices(ctx, def.Nested, options); err != nil {
				return err
			}
			continue
		}
		if def.Type != forms.TypeModelSelect || def.Ref == "" {
			continue
		}
		if _, ok := options.ModelChoices[def.Name]; ok {
			continue
		}
		choices := def.Choices
		if len(choices) == 0 {
			var err error
			choices, err = o.choices.ModelChoices(ctx, def.Ref)
			if err != nil {
				return fmt.Errorf("orchestrator: choices for model %q: %w", def.Ref, err)
			}
		}
		if options.ModelChoices == nil {
			options.ModelChoices = make(map[string][]forms.Choice)
		}
		options.ModelChoices[def.Name] = choices
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}

	if o.adapters == nil {
		o.adapters = DefaultAdapters()
	}
	if o.renderers == nil {
		o.renderers = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.renderers.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}

	o.defaultsApplied = true
}
