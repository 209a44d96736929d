package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-modelform/pkg/modelschema"
)

const openapiPayload = `
openapi: 3.0.3
info:
  title: Inventory
  version: 1.0.0
paths: {}
components:
  schemas:
    Item:
      type: object
      required: [id, sku]
      properties:
        id:
          type: integer
          x-primary-key: true
        sku:
          type: string
          maxLength: 32
`

func TestAdapterRegistryRejectsDuplicates(t *testing.T) {
	registry := NewAdapterRegistry()
	if err := registry.Register(yamlAdapter{}); err != nil {
		t.Fatal(err)
	}
	err := registry.Register(yamlAdapter{})
	if err == nil || !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("err = %v", err)
	}
}

func TestAdapterRegistryGetUnknown(t *testing.T) {
	registry := DefaultAdapters()
	if _, err := registry.Get("toml"); err == nil {
		t.Fatal("expected error for unknown adapter")
	}
	if got := registry.List(); len(got) != 2 || got[0] != "openapi" || got[1] != "yaml" {
		t.Fatalf("list = %v", got)
	}
}

func TestDetectYAMLDocument(t *testing.T) {
	matches := DefaultAdapters().Detect(modelschema.SourceFromFile("models.yaml"), []byte(blogYAML))
	if len(matches) != 1 || matches[0].Name() != "yaml" {
		t.Fatalf("matches = %v", adapterNames(matches))
	}
}

func TestDetectOpenAPIDocument(t *testing.T) {
	matches := DefaultAdapters().Detect(modelschema.SourceFromFile("api.yaml"), []byte(openapiPayload))
	if len(matches) != 1 || matches[0].Name() != "openapi" {
		t.Fatalf("matches = %v", adapterNames(matches))
	}
}

func TestGenerateDetectsOpenAPIFormat(t *testing.T) {
	doc, err := modelschema.NewDocument(modelschema.SourceFromFile("api.yaml"), []byte(openapiPayload))
	if err != nil {
		t.Fatal(err)
	}

	renderer := &captureRenderer{}
	orch := newCaptureOrchestrator(renderer)

	if _, err := orch.Generate(context.Background(), Request{Document: &doc, Model: "Item"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, ok := renderer.schema.Field("sku"); !ok {
		t.Fatal("sku field missing")
	}
}

func TestGenerateExplicitFormatOverridesDetection(t *testing.T) {
	doc, err := modelschema.NewDocument(modelschema.SourceFromFile("api.yaml"), []byte(openapiPayload))
	if err != nil {
		t.Fatal(err)
	}

	orch := New()
	_, err = orch.Generate(context.Background(), Request{Document: &doc, Format: "yaml", Model: "Item"})
	if err == nil {
		t.Fatal("yaml adapter should fail to parse an openapi payload")
	}
}

func adapterNames(adapters []SchemaAdapter) []string {
	names := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		names = append(names, adapter.Name())
	}
	return names
}
