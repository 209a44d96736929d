package modelschema

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

// modelDocument is the YAML layout for a model-set document.
type modelDocument struct {
	Models []*Model `yaml:"models"`
}

// ParseYAML decodes a model-set document and returns a validated Registry.
// The document shape is:
//
//	models:
//	  - name: blog
//	    table: blogs
//	    fields:
//	      - {name: id, kind: autokey, primaryKey: true}
//	      - {name: title, kind: char, maxLength: 255}
//	    relations:
//	      - {name: entries, child: entry, foreignKey: blog}
func ParseYAML(doc Document) (*Registry, error) {
	var parsed modelDocument
	if err := yaml.Unmarshal(doc.Raw(), &parsed); err != nil {
		return nil, fmt.Errorf("modelschema: parse %s: %w", doc.Location(), err)
	}
	if len(parsed.Models) == 0 {
		return nil, fmt.Errorf("modelschema: document %s declares no models", doc.Location())
	}

	registry := NewRegistry()
	for _, model := range parsed.Models {
		normalizeDefaults(model)
		if err := registry.Register(model); err != nil {
			return nil, err
		}
	}
	if err := registry.Validate(); err != nil {
		return nil, err
	}
	return registry, nil
}

// LoadYAMLFile reads a model-set document from disk and parses it.
func LoadYAMLFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("modelschema: read %s: %w", path, err)
	}
	doc, err := NewDocument(SourceFromFile(path), raw)
	if err != nil {
		return nil, err
	}
	return ParseYAML(doc)
}

// LoadYAMLURL fetches a model-set document over HTTP and parses it. A nil
// client uses http.DefaultClient.
func LoadYAMLURL(ctx context.Context, client *http.Client, rawURL string) (*Registry, error) {
	doc, err := FetchDocument(ctx, client, rawURL)
	if err != nil {
		return nil, err
	}
	return ParseYAML(doc)
}

// normalizeDefaults marks HasDefault for fields whose YAML carried an explicit
// default, and flags autokey fields as primary keys when none is declared.
func normalizeDefaults(model *Model) {
	if model == nil {
		return
	}
	hasPK := model.PrimaryKey() != nil
	for i := range model.Fields {
		field := &model.Fields[i]
		if field.Default != nil {
			field.HasDefault = true
		}
		if field.Kind == KindAutoKey && !hasPK {
			field.PrimaryKey = true
			hasPK = true
		}
	}
}
