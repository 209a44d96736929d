// Package convert exposes the model-to-form schema converter. It re-exports
// the internal implementation behind a small functional-options constructor.
package convert

import (
	internalconvert "github.com/goliatone/go-modelform/internal/convert"
	"github.com/goliatone/go-modelform/pkg/forms"
	"github.com/goliatone/go-modelform/pkg/modelschema"
)

// Converter re-exports the internal converter.
type Converter = internalconvert.Converter

// FieldArgs carries per-field conversion overrides.
type FieldArgs = internalconvert.FieldArgs

// Override replaces the generated definition for a named field.
type Override = internalconvert.Override

// KindConverter customises conversion for a whole field kind.
type KindConverter = internalconvert.KindConverter

// FieldsOptions controls field selection and nesting during conversion.
type FieldsOptions = internalconvert.FieldsOptions

// ErrUnconvertible reports a field kind with no known mapping.
var ErrUnconvertible = internalconvert.ErrUnconvertible

// DefaultLabeler is the built-in field-name to label function.
var DefaultLabeler = internalconvert.DefaultLabeler

// Option configures the converter.
type Option func(*internalconvert.Options)

// WithRegistry supplies the model registry used to resolve foreign keys and
// nested relations.
func WithRegistry(registry *modelschema.Registry) Option {
	return func(opts *internalconvert.Options) {
		opts.Registry = registry
	}
}

// WithOverride replaces the generated definition for the named field.
func WithOverride(name string, override Override) Option {
	return func(opts *internalconvert.Options) {
		if opts.Overrides == nil {
			opts.Overrides = make(map[string]Override)
		}
		opts.Overrides[name] = override
	}
}

// WithKindConverter registers a conversion hook for a field kind.
func WithKindConverter(kind modelschema.FieldKind, converter KindConverter) Option {
	return func(opts *internalconvert.Options) {
		if opts.Converters == nil {
			opts.Converters = make(map[modelschema.FieldKind]KindConverter)
		}
		opts.Converters[kind] = converter
	}
}

// WithCoercion overrides the coercion used when a kind renders as a select.
func WithCoercion(kind modelschema.FieldKind, coerce forms.Coercer) Option {
	return func(opts *internalconvert.Options) {
		if opts.Coercions == nil {
			opts.Coercions = make(map[modelschema.FieldKind]forms.Coercer)
		}
		opts.Coercions[kind] = coerce
	}
}

// WithLabeler overrides the default label generation function.
func WithLabeler(labeler func(string) string) Option {
	return func(opts *internalconvert.Options) {
		opts.Labeler = labeler
	}
}

// WithMaxDepth bounds nested-collection recursion.
func WithMaxDepth(depth int) Option {
	return func(opts *internalconvert.Options) {
		opts.MaxDepth = depth
	}
}

// New constructs a Converter applying the provided options.
func New(options ...Option) *Converter {
	cfg := internalconvert.Options{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return internalconvert.New(cfg)
}
