// Package openapi derives model metadata from OpenAPI 3 documents. Component
// schemas become models; properties become fields; array-of-$ref properties
// become reverse relations. A handful of x- extensions cover what standard
// OpenAPI cannot express (primary keys, foreign keys, table names).
package openapi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-modelform/pkg/modelschema"
)

// Extension keys understood by the adapter.
const (
	extTable      = "x-table"
	extPrimaryKey = "x-primary-key"
	extRef        = "x-ref"
	extForeignKey = "x-foreign-key"
	extColumn     = "x-column"
)

// ParseDocument loads an OpenAPI payload and converts its component schemas
// into a validated model registry.
func ParseDocument(ctx context.Context, doc modelschema.Document) (*modelschema.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document %s: %w", doc.Location(), err)
	}
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return nil, fmt.Errorf("openapi: document %s declares no component schemas", doc.Location())
	}

	names := make([]string, 0, len(spec.Components.Schemas))
	for name := range spec.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	registry := modelschema.NewRegistry()
	for _, name := range names {
		model, err := convertComponent(name, spec.Components.Schemas[name])
		if err != nil {
			return nil, err
		}
		if model == nil {
			continue
		}
		if err := registry.Register(model); err != nil {
			return nil, err
		}
	}
	if err := registry.Validate(); err != nil {
		return nil, err
	}
	return registry, nil
}

// LoadFile reads an OpenAPI document from disk and parses it.
func LoadFile(ctx context.Context, path string) (*modelschema.Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	doc, err := modelschema.NewDocument(modelschema.SourceFromFile(path), raw)
	if err != nil {
		return nil, err
	}
	return ParseDocument(ctx, doc)
}

func convertComponent(name string, ref *openapi3.SchemaRef) (*modelschema.Model, error) {
	if ref == nil || ref.Value == nil {
		return nil, nil
	}
	src := ref.Value
	if !src.Type.Is("object") || len(src.Properties) == 0 {
		// Non-object components (enums, scalars) carry no model shape.
		return nil, nil
	}

	model := &modelschema.Model{
		Name:  name,
		Table: stringExt(src.Extensions, extTable),
	}

	required := make(map[string]struct{}, len(src.Required))
	for _, field := range src.Required {
		required[field] = struct{}{}
	}

	propNames := make([]string, 0, len(src.Properties))
	for propName := range src.Properties {
		propNames = append(propNames, propName)
	}
	sort.Strings(propNames)

	for _, propName := range propNames {
		prop := src.Properties[propName]
		if prop == nil || prop.Value == nil {
			continue
		}

		if child, ok := relationChild(prop.Value); ok {
			model.Relations = append(model.Relations, modelschema.Relation{
				Name:       propName,
				Child:      child,
				ForeignKey: relationForeignKey(prop.Value, name),
			})
			continue
		}

		field, err := convertProperty(name, propName, prop.Value, required)
		if err != nil {
			return nil, err
		}
		model.Fields = append(model.Fields, field)
	}

	if len(model.Fields) == 0 {
		return nil, nil
	}
	orderPrimaryKeyFirst(model)
	return model, nil
}

func convertProperty(modelName, propName string, src *openapi3.Schema, required map[string]struct{}) (modelschema.Field, error) {
	field := modelschema.Field{
		Name:     propName,
		Column:   stringExt(src.Extensions, extColumn),
		Label:    src.Title,
		HelpText: src.Description,
		Default:  src.Default,
	}
	if src.Default != nil {
		field.HasDefault = true
	}
	if _, ok := required[propName]; !ok {
		field.Null = true
	}
	if src.Nullable {
		field.Null = true
	}
	if boolExt(src.Extensions, extPrimaryKey) {
		field.PrimaryKey = true
		field.Null = false
	}

	if ref := stringExt(src.Extensions, extRef); ref != "" {
		field.Kind = modelschema.KindForeignKey
		field.Ref = ref
	} else {
		kind, err := kindFor(src)
		if err != nil {
			return modelschema.Field{}, fmt.Errorf("openapi: %s.%s: %w", modelName, propName, err)
		}
		field.Kind = kind
	}

	if field.PrimaryKey && field.Kind == modelschema.KindInt {
		field.Kind = modelschema.KindAutoKey
	}
	if src.MaxLength != nil {
		field.MaxLength = int(*src.MaxLength)
	}
	for _, value := range src.Enum {
		field.Choices = append(field.Choices, modelschema.Choice{
			Value: value,
			Label: fmt.Sprint(value),
		})
	}
	return field, nil
}

func kindFor(src *openapi3.Schema) (modelschema.FieldKind, error) {
	switch {
	case src.Type.Is("integer"):
		if src.Format == "int64" {
			return modelschema.KindBigInt, nil
		}
		return modelschema.KindInt, nil
	case src.Type.Is("number"):
		if src.Format == "double" {
			return modelschema.KindDouble, nil
		}
		return modelschema.KindFloat, nil
	case src.Type.Is("boolean"):
		return modelschema.KindBool, nil
	case src.Type.Is("string"):
		switch src.Format {
		case "date":
			return modelschema.KindDate, nil
		case "time":
			return modelschema.KindTime, nil
		case "date-time":
			return modelschema.KindDateTime, nil
		case "uuid":
			return modelschema.KindUUID, nil
		case "byte", "binary":
			return modelschema.KindBlob, nil
		}
		if src.MaxLength != nil {
			return modelschema.KindChar, nil
		}
		return modelschema.KindText, nil
	default:
		return "", fmt.Errorf("unsupported schema type %q", typeString(src.Type))
	}
}

// relationChild recognises array-of-$ref properties as reverse relations and
// returns the referenced component name.
func relationChild(src *openapi3.Schema) (string, bool) {
	if !src.Type.Is("array") || src.Items == nil {
		return "", false
	}
	ref := src.Items.Ref
	if ref == "" {
		return "", false
	}
	parts := strings.Split(ref, "/")
	return parts[len(parts)-1], true
}

// relationForeignKey reads the x-foreign-key extension, defaulting to the
// snake-cased parent name plus _id.
func relationForeignKey(src *openapi3.Schema, parent string) string {
	if fk := stringExt(src.Extensions, extForeignKey); fk != "" {
		return fk
	}
	return strings.ToLower(parent) + "_id"
}

func orderPrimaryKeyFirst(model *modelschema.Model) {
	for i := range model.Fields {
		if model.Fields[i].PrimaryKey {
			if i > 0 {
				pk := model.Fields[i]
				copy(model.Fields[1:i+1], model.Fields[:i])
				model.Fields[0] = pk
			}
			return
		}
	}
}

func stringExt(extensions map[string]any, key string) string {
	if value, ok := extensions[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func boolExt(extensions map[string]any, key string) bool {
	value, _ := extensions[key].(bool)
	return value
}

func typeString(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	return strings.Join(types.Slice(), ",")
}
