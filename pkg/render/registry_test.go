package render

import (
	"context"
	"testing"

	"github.com/goliatone/go-modelform/pkg/forms"
)

type stubRenderer struct {
	name string
}

func (s *stubRenderer) Name() string        { return s.name }
func (s *stubRenderer) ContentType() string { return "text/plain" }
func (s *stubRenderer) Render(context.Context, *forms.Schema, RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&stubRenderer{name: "vanilla"}); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(&stubRenderer{name: "vanilla"}); err == nil {
		t.Fatal("duplicate registration should fail")
	}
	if err := registry.Register(&stubRenderer{}); err == nil {
		t.Fatal("empty name should fail")
	}

	if !registry.Has("vanilla") {
		t.Error("vanilla should be registered")
	}
	if _, err := registry.Get("missing"); err == nil {
		t.Error("missing renderer should error")
	}

	registry.MustRegister(&stubRenderer{name: "text"})
	names := registry.List()
	if len(names) != 2 || names[0] != "text" || names[1] != "vanilla" {
		t.Errorf("names = %v", names)
	}
}

func TestHiddenFieldHelpers(t *testing.T) {
	merged := MergeHiddenFields(map[string]string{"version": "3"},
		CSRFToken("_csrf", "tok"),
		Hidden(" ", "dropped"),
		VersionField("version", 4),
	)
	if merged["_csrf"] != "tok" {
		t.Errorf("merged = %v", merged)
	}
	if merged["version"] != "4" {
		t.Error("later fields should win on collisions")
	}

	sorted := SortedHiddenFields(merged)
	if len(sorted) != 2 || sorted[0].Name != "_csrf" || sorted[1].Name != "version" {
		t.Errorf("sorted = %v", sorted)
	}
}
