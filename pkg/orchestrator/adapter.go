package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-modelform/pkg/modelschema"
	pkgopenapi "github.com/goliatone/go-modelform/pkg/openapi"
)

// SchemaAdapter parses one model-document format into a registry. Adapters
// also self-detect against raw payloads so callers can omit the format name.
type SchemaAdapter interface {
	Name() string
	Detect(src modelschema.Source, raw []byte) bool
	Parse(ctx context.Context, doc modelschema.Document) (*modelschema.Registry, error)
}

// AdapterRegistry stores format adapters by name.
type AdapterRegistry struct {
	mu       sync.RWMutex
	adapters map[string]SchemaAdapter
}

// NewAdapterRegistry creates an empty adapter registry.
func NewAdapterRegistry() *AdapterRegistry {
	return &AdapterRegistry{adapters: make(map[string]SchemaAdapter)}
}

// DefaultAdapters returns a registry holding the built-in YAML and OpenAPI
// adapters.
func DefaultAdapters() *AdapterRegistry {
	registry := NewAdapterRegistry()
	registry.MustRegister(yamlAdapter{})
	registry.MustRegister(openapiAdapter{})
	return registry
}

// Register adds an adapter by its Name(). Duplicate names return an error.
func (r *AdapterRegistry) Register(adapter SchemaAdapter) error {
	if adapter == nil {
		return fmt.Errorf("orchestrator: adapter is required")
	}
	name := normalizeAdapterName(adapter.Name())
	if name == "" {
		return fmt.Errorf("orchestrator: adapter name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[name]; exists {
		return fmt.Errorf("orchestrator: adapter %q already registered", name)
	}
	r.adapters[name] = adapter
	return nil
}

// MustRegister panics on registration failure.
func (r *AdapterRegistry) MustRegister(adapter SchemaAdapter) {
	if err := r.Register(adapter); err != nil {
		panic(err)
	}
}

// Get retrieves an adapter by name.
func (r *AdapterRegistry) Get(name string) (SchemaAdapter, error) {
	key := normalizeAdapterName(name)
	if key == "" {
		return nil, fmt.Errorf("orchestrator: adapter name is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[key]
	if !ok {
		return nil, fmt.Errorf("orchestrator: adapter %q not found", key)
	}
	return adapter, nil
}

// List returns a sorted list of adapter names.
func (r *AdapterRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Detect returns all adapters that match the payload, in name order.
func (r *AdapterRegistry) Detect(src modelschema.Source, raw []byte) []SchemaAdapter {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)

	var matches []SchemaAdapter
	for _, name := range names {
		if r.adapters[name].Detect(src, raw) {
			matches = append(matches, r.adapters[name])
		}
	}
	return matches
}

func normalizeAdapterName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// yamlAdapter parses the native model-set YAML format.
type yamlAdapter struct{}

func (yamlAdapter) Name() string { return "yaml" }

func (yamlAdapter) Detect(src modelschema.Source, raw []byte) bool {
	if hasOpenAPIMarker(raw) {
		return false
	}
	if bytes.Contains(raw, []byte("models:")) {
		return true
	}
	if src == nil {
		return false
	}
	switch strings.ToLower(filepath.Ext(src.Location())) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (yamlAdapter) Parse(_ context.Context, doc modelschema.Document) (*modelschema.Registry, error) {
	return modelschema.ParseYAML(doc)
}

// openapiAdapter derives models from OpenAPI component schemas.
type openapiAdapter struct{}

func (openapiAdapter) Name() string { return "openapi" }

func (openapiAdapter) Detect(_ modelschema.Source, raw []byte) bool {
	return hasOpenAPIMarker(raw)
}

func (openapiAdapter) Parse(ctx context.Context, doc modelschema.Document) (*modelschema.Registry, error) {
	return pkgopenapi.ParseDocument(ctx, doc)
}

func hasOpenAPIMarker(raw []byte) bool {
	return bytes.Contains(raw, []byte("openapi:")) || bytes.Contains(raw, []byte(`"openapi"`))
}
