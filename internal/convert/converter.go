package convert

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-modelform/pkg/forms"
	"github.com/goliatone/go-modelform/pkg/modelschema"
)

// ErrUnconvertible reports a model field kind the converter has no mapping
// for.
var ErrUnconvertible = errors.New("no possible conversion")

// FieldArgs carries per-field overrides applied during conversion, before any
// name-level override hook runs.
type FieldArgs struct {
	Label       string
	Description string
	Optional    bool
	Choices     []forms.Choice
	Coerce      forms.Coercer
	Validators  []forms.Validator
}

// Override replaces the generated definition for a named field. The base
// definition arrives with label, validators, filters, and default already
// inferred.
type Override func(base forms.Definition) (forms.Definition, error)

// KindConverter customises conversion for a whole field kind. The foreign-key
// handler is pre-registered; callers may add or replace handlers per kind.
type KindConverter func(c *Converter, model *modelschema.Model, field modelschema.Field, base forms.Definition) (forms.Definition, error)

// Converter maps model fields onto form-field definitions through an ordered
// defaults table, kind hooks, and per-name overrides.
type Converter struct {
	registry   *modelschema.Registry
	defaults   []kindDefault
	coerces    map[modelschema.FieldKind]forms.Coercer
	required   map[modelschema.FieldKind]struct{}
	converters map[modelschema.FieldKind]KindConverter
	overrides  map[string]Override
	labeler    func(string) string
	maxDepth   int
}

// Options configures a Converter. The zero value of each member falls back to
// the built-in behaviour.
type Options struct {
	Registry   *modelschema.Registry
	Overrides  map[string]Override
	Converters map[modelschema.FieldKind]KindConverter
	Coercions  map[modelschema.FieldKind]forms.Coercer
	Labeler    func(string) string
	MaxDepth   int
}

// New creates a Converter with the supplied options.
func New(options Options) *Converter {
	c := &Converter{
		registry:   options.Registry,
		defaults:   defaultKindTable(),
		coerces:    make(map[modelschema.FieldKind]forms.Coercer, len(coerceDefaults)),
		required:   make(map[modelschema.FieldKind]struct{}, len(requiredKinds)),
		converters: make(map[modelschema.FieldKind]KindConverter, 1),
		overrides:  make(map[string]Override, len(options.Overrides)),
		labeler:    DefaultLabeler,
		maxDepth:   defaultMaxDepth,
	}
	for kind, coerce := range coerceDefaults {
		c.coerces[kind] = coerce
	}
	for _, kind := range requiredKinds {
		c.required[kind] = struct{}{}
	}
	c.converters[modelschema.KindForeignKey] = handleForeignKey

	for kind, coerce := range options.Coercions {
		c.coerces[kind] = coerce
	}
	for kind, converter := range options.Converters {
		c.converters[kind] = converter
	}
	for name, override := range options.Overrides {
		c.overrides[name] = override
	}
	if options.Labeler != nil {
		c.labeler = options.Labeler
	}
	if options.MaxDepth > 0 {
		c.maxDepth = options.MaxDepth
	}
	return c
}

// Convert maps a single model field to its form-field definition, honoring
// args, per-name overrides, kind hooks, and finally the defaults table.
func (c *Converter) Convert(model *modelschema.Model, field modelschema.Field, args *FieldArgs) (forms.Definition, error) {
	base := forms.Definition{
		Name:        field.Name,
		Label:       field.Label,
		Description: field.HelpText,
		Default:     field.Default,
	}
	if base.Label == "" {
		base.Label = c.labeler(field.Name)
	}

	if field.Null {
		// Empty submissions become NULL, not "".
		base.Filters = append(base.Filters, forms.NullIfEmpty)
	}
	if (field.Null || field.HasDefault) && len(field.Choices) == 0 {
		base.Optional = true
	} else if c.isRequiredKind(field) {
		base.Required = true
	}

	choices := choiceList(field.Choices)
	if args != nil {
		if args.Label != "" {
			base.Label = args.Label
		}
		if args.Description != "" {
			base.Description = args.Description
		}
		if args.Optional {
			base.Optional = true
			base.Required = false
		}
		if len(args.Choices) > 0 {
			choices = args.Choices
		}
		if args.Coerce != nil {
			base.Coerce = args.Coerce
		}
		base.Validators = append(base.Validators, args.Validators...)
	}

	if override, ok := c.overrides[field.Name]; ok {
		return override(base)
	}
	if converter, ok := c.converters[field.Kind]; ok {
		return converter(c, model, field, base)
	}

	for _, entry := range c.defaults {
		if entry.kind != field.Kind {
			continue
		}
		if len(choices) > 0 {
			if def, ok := c.selectFromChoices(field, base, choices); ok {
				return def, nil
			}
		}
		def := entry.make(base, field)
		if field.PrimaryKey {
			def.Type = forms.TypeHiddenKey
		}
		return def, nil
	}

	return forms.Definition{}, fmt.Errorf("convert: field %q: %w for kind %q", field.Name, ErrUnconvertible, field.Kind)
}

// selectFromChoices renders a choiced column as a select when a coercion is
// known for the kind, mirroring the choices special-case of the defaults
// table.
func (c *Converter) selectFromChoices(field modelschema.Field, base forms.Definition, choices []forms.Choice) (forms.Definition, bool) {
	coerce := base.Coerce
	if coerce == nil {
		coerce = c.coerces[field.Kind]
	}
	if coerce == nil {
		return forms.Definition{}, false
	}
	def := base
	def.Type = forms.TypeSelect
	def.Choices = choices
	def.Coerce = coerce
	def.AllowBlank = field.Null
	return def, true
}

func (c *Converter) isRequiredKind(field modelschema.Field) bool {
	if field.PrimaryKey {
		return true
	}
	_, ok := c.required[field.Kind]
	return ok
}

// FieldsOptions controls which model fields participate in a conversion pass.
type FieldsOptions struct {
	// Only restricts conversion to the named fields and relations. Dotted
	// names (entries.title) scope into nested collections.
	Only []string
	// Exclude removes the named fields and relations. Dotted names scope
	// into nested collections.
	Exclude []string
	// AllowPK keeps the primary-key field in the form, as a hidden key.
	AllowPK bool
	// AllowDelete adds the delete_ marker to the form.
	AllowDelete bool
	// IncludeNested recurses into reverse relations, emitting list fields.
	IncludeNested bool
	// FieldArgs overrides conversion per field name.
	FieldArgs map[string]*FieldArgs

	depth    int
	ancestry []string
}

// Form converts a model into a complete form schema.
func (c *Converter) Form(model *modelschema.Model, opts FieldsOptions) (*forms.Schema, error) {
	defs, err := c.Fields(model, opts)
	if err != nil {
		return nil, err
	}
	schema := forms.NewSchema(model.Name+"Form", model.Name)
	for _, def := range defs {
		if err := schema.Add(def); err != nil {
			return nil, err
		}
	}
	if opts.AllowDelete {
		if err := schema.Add(forms.Definition{
			Name:    forms.DeleteField,
			Type:    forms.TypeCheckbox,
			Label:   "Delete",
			Default: false,
		}); err != nil {
			return nil, err
		}
	}
	return schema, nil
}

// Fields converts the model's fields, and optionally its reverse relations,
// into ordered form-field definitions.
func (c *Converter) Fields(model *modelschema.Model, opts FieldsOptions) ([]forms.Definition, error) {
	if model == nil {
		return nil, errors.New("convert: model is nil")
	}

	var defs []forms.Definition
	for _, field := range model.Fields {
		if field.PrimaryKey && !opts.AllowPK {
			continue
		}
		if !selected(field.Name, opts.Only, opts.Exclude) {
			continue
		}
		def, err := c.Convert(model, field, opts.FieldArgs[field.Name])
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	if !opts.IncludeNested {
		return defs, nil
	}

	relations := append([]modelschema.Relation(nil), model.Relations...)
	sort.Slice(relations, func(i, j int) bool { return relations[i].Name < relations[j].Name })

	for _, rel := range relations {
		if !selected(rel.Name, opts.Only, opts.Exclude) {
			continue
		}
		def, err := c.nestedList(model, rel, opts)
		if err != nil {
			return nil, err
		}
		if def != nil {
			defs = append(defs, *def)
		}
	}
	return defs, nil
}

// nestedList builds the list-field definition for a reverse relation,
// recursing into the child model with depth tracking. Returns nil when the
// recursion limit or an ancestry cycle stops the descent.
func (c *Converter) nestedList(model *modelschema.Model, rel modelschema.Relation, opts FieldsOptions) (*forms.Definition, error) {
	depth := opts.depth + 1
	if depth > c.maxDepth {
		return nil, nil
	}
	for _, ancestor := range opts.ancestry {
		if ancestor == rel.Child {
			return nil, nil
		}
	}
	if c.registry == nil {
		return nil, fmt.Errorf("convert: relation %q: converter has no model registry", rel.Name)
	}
	child, ok := c.registry.Lookup(rel.Child)
	if !ok {
		return nil, fmt.Errorf("convert: relation %q: unknown child model %q", rel.Name, rel.Child)
	}
	childPK := child.PrimaryKey()
	if childPK == nil {
		return nil, fmt.Errorf("convert: relation %q: child model %q has no primary key", rel.Name, rel.Child)
	}

	subOpts := FieldsOptions{
		Only:          scopedNames(opts.Only, rel.Name),
		Exclude:       append(scopedNames(opts.Exclude, rel.Name), rel.ForeignKey),
		AllowPK:       true,
		AllowDelete:   true,
		IncludeNested: true,
		FieldArgs: map[string]*FieldArgs{
			childPK.Name: {Optional: true},
		},
		depth:    depth,
		ancestry: append(append([]string(nil), opts.ancestry...), model.Name),
	}
	nested, err := c.Form(child, subOpts)
	if err != nil {
		return nil, err
	}

	return &forms.Definition{
		Name:       rel.Name,
		Type:       forms.TypeList,
		Label:      c.labeler(rel.Name),
		Nested:     nested,
		ForeignKey: rel.ForeignKey,
		Depth:      depth,
	}, nil
}

// selected applies only/exclude filtering at the current nesting level.
// Dotted names belong to deeper levels and are ignored here.
func selected(name string, only, exclude []string) bool {
	if len(only) > 0 {
		for _, candidate := range only {
			if candidate == name || strings.HasPrefix(candidate, name+".") {
				return true
			}
		}
		return false
	}
	for _, candidate := range exclude {
		if candidate == name {
			return false
		}
	}
	return true
}

// scopedNames strips the relation prefix from dotted names so they apply one
// level down: entries.title becomes title inside the entries sub-form.
func scopedNames(names []string, relation string) []string {
	prefix := relation + "."
	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name[len(prefix):])
		}
	}
	return out
}

func choiceList(choices []modelschema.Choice) []forms.Choice {
	if len(choices) == 0 {
		return nil
	}
	out := make([]forms.Choice, 0, len(choices))
	for _, choice := range choices {
		out = append(out, forms.Choice{Value: choice.Value, Label: choice.Label})
	}
	return out
}

// handleForeignKey renders FK columns as selects: a fixed choice list when the
// column declares one, otherwise a free related-model select resolved against
// the referenced model. Nullable FKs accept the blank sentinel.
func handleForeignKey(c *Converter, _ *modelschema.Model, field modelschema.Field, base forms.Definition) (forms.Definition, error) {
	def := base
	def.AllowBlank = field.Null

	coerce := def.Coerce
	if coerce == nil {
		coerce = c.refKeyCoercer(field.Ref)
	}
	def.Coerce = coerce

	if len(field.Choices) > 0 {
		def.Type = forms.TypeSelect
		def.Choices = choiceList(field.Choices)
		return def, nil
	}

	def.Type = forms.TypeModelSelect
	def.Ref = field.Ref
	return def, nil
}

// refKeyCoercer picks the coercion for a referenced model's primary key.
func (c *Converter) refKeyCoercer(ref string) forms.Coercer {
	if c.registry != nil {
		if target, ok := c.registry.Lookup(ref); ok {
			if pk := target.PrimaryKey(); pk != nil {
				switch pk.Kind {
				case modelschema.KindUUID, modelschema.KindChar, modelschema.KindText:
					return forms.CoerceString
				}
			}
		}
	}
	return forms.CoerceInt
}
