package orchestrator

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-modelform/pkg/forms"
	"github.com/goliatone/go-modelform/pkg/modelschema"
	"github.com/goliatone/go-modelform/pkg/render"
)

const blogYAML = `
models:
  - name: Note
    table: notes
    fields:
      - {name: id, kind: autokey}
      - {name: title, kind: char, maxLength: 200}
      - {name: author_id, kind: foreignkey, ref: Author, null: true}
    relations:
      - {name: tags, child: Tag, foreignKey: note_id}
  - name: Tag
    table: tags
    fields:
      - {name: id, kind: autokey}
      - {name: note_id, kind: foreignkey, ref: Note}
      - {name: label, kind: char, maxLength: 64}
  - name: Author
    table: authors
    fields:
      - {name: id, kind: autokey}
      - {name: name, kind: char}
`

func blogDoc(t *testing.T) *modelschema.Document {
	t.Helper()
	doc, err := modelschema.NewDocument(modelschema.SourceFromFile("blog.yaml"), []byte(blogYAML))
	if err != nil {
		t.Fatal(err)
	}
	return &doc
}

type captureRenderer struct {
	schema  *forms.Schema
	options render.RenderOptions
}

func (r *captureRenderer) Name() string        { return "capture" }
func (r *captureRenderer) ContentType() string { return "text/plain" }

func (r *captureRenderer) Render(_ context.Context, schema *forms.Schema, options render.RenderOptions) ([]byte, error) {
	r.schema = schema
	r.options = options
	return []byte(schema.Name), nil
}

func newCaptureOrchestrator(renderer *captureRenderer, options ...Option) *Orchestrator {
	registry := render.NewRegistry()
	registry.MustRegister(renderer)
	base := []Option{
		WithRendererRegistry(registry),
		WithDefaultRenderer(renderer.Name()),
	}
	return New(append(base, options...)...)
}

func TestGenerateBuildsNestedSchema(t *testing.T) {
	renderer := &captureRenderer{}
	orch := newCaptureOrchestrator(renderer)

	output, err := orch.Generate(context.Background(), Request{
		Document: blogDoc(t),
		Model:    "Note",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(output) != "NoteForm" {
		t.Fatalf("output = %q", output)
	}

	tags, ok := renderer.schema.Field("tags")
	if !ok || tags.Type != forms.TypeList || tags.Nested == nil {
		t.Fatalf("tags field = %+v", tags)
	}
	author, ok := renderer.schema.Field("author_id")
	if !ok || author.Type != forms.TypeModelSelect || author.Ref != "Author" {
		t.Fatalf("author_id field = %+v", author)
	}
}

func TestGenerateDefaultVanillaRenderer(t *testing.T) {
	orch := New()

	output, err := orch.Generate(context.Background(), Request{
		Document: blogDoc(t),
		Model:    "Author",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(output)
	if !strings.Contains(html, "<form") || !strings.Contains(html, `name="name"`) {
		t.Fatalf("unexpected output:\n%s", html)
	}
}

func TestGenerateLoadsFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blog.yaml")
	if err := os.WriteFile(path, []byte(blogYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	renderer := &captureRenderer{}
	orch := newCaptureOrchestrator(renderer)

	if _, err := orch.Generate(context.Background(), Request{Path: path, Model: "Tag"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if renderer.schema == nil || renderer.schema.Model != "Tag" {
		t.Fatalf("schema = %+v", renderer.schema)
	}
}

func TestGenerateWithPreloadedModels(t *testing.T) {
	registry := modelschema.NewRegistry()
	registry.MustRegister(&modelschema.Model{
		Name: "Widget",
		Fields: []modelschema.Field{
			{Name: "id", Kind: modelschema.KindAutoKey, PrimaryKey: true},
			{Name: "label", Kind: modelschema.KindChar},
		},
	})

	renderer := &captureRenderer{}
	orch := newCaptureOrchestrator(renderer, WithModels(registry))

	if _, err := orch.Generate(context.Background(), Request{Model: "Widget"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, ok := renderer.schema.Field("label"); !ok {
		t.Fatal("label field missing")
	}
}

func TestSchemaUnknownModel(t *testing.T) {
	orch := New()
	_, err := orch.Schema(context.Background(), Request{Document: blogDoc(t), Model: "Missing"})
	if err == nil || !strings.Contains(err.Error(), `model "Missing" not found`) {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateUnknownRenderer(t *testing.T) {
	orch := New()
	_, err := orch.Generate(context.Background(), Request{
		Document: blogDoc(t),
		Model:    "Author",
		Renderer: "nope",
	})
	if err == nil || !strings.Contains(err.Error(), `renderer "nope"`) {
		t.Fatalf("err = %v", err)
	}
}

type stubChoiceSource struct {
	calls   []string
	choices map[string][]forms.Choice
}

func (s *stubChoiceSource) ModelChoices(_ context.Context, model string) ([]forms.Choice, error) {
	s.calls = append(s.calls, model)
	return s.choices[model], nil
}

func TestGenerateFillsModelChoices(t *testing.T) {
	source := &stubChoiceSource{choices: map[string][]forms.Choice{
		"Author": {{Value: int64(1), Label: "Ada"}},
	}}

	renderer := &captureRenderer{}
	orch := newCaptureOrchestrator(renderer, WithChoiceSource(source))

	if _, err := orch.Generate(context.Background(), Request{Document: blogDoc(t), Model: "Note"}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	choices := renderer.options.ModelChoices["author_id"]
	if len(choices) != 1 || choices[0].Label != "Ada" {
		t.Fatalf("choices = %+v", choices)
	}
	if len(source.calls) != 1 || source.calls[0] != "Author" {
		t.Fatalf("calls = %v", source.calls)
	}
}

func TestSchemaValidatesModelSelectMembership(t *testing.T) {
	source := &stubChoiceSource{choices: map[string][]forms.Choice{
		"Author": {{Value: int64(1), Label: "Ada"}},
	}}
	orch := newCaptureOrchestrator(&captureRenderer{}, WithChoiceSource(source))

	schema, err := orch.Schema(context.Background(), Request{Document: blogDoc(t), Model: "Note"})
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	form := schema.Bind(url.Values{"title": {"hi"}, "author_id": {"999999"}})
	if form.Valid() {
		t.Fatal("fabricated author key must not pass validation")
	}
	errs := form.Errors()["author_id"]
	if len(errs) != 1 || errs[0] != "not a valid choice" {
		t.Fatalf("unexpected errors: %v", errs)
	}

	form = schema.Bind(url.Values{"title": {"hi"}, "author_id": {"1"}})
	if !form.Valid() {
		t.Fatalf("unexpected errors: %v", form.Errors())
	}
	if got := form.Value("author_id"); got != int64(1) {
		t.Fatalf("author_id = %v", got)
	}
}

type stubThemeSelector struct {
	selection *theme.Selection
	calls     int
}

func (s *stubThemeSelector) Select(_, _ string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls++
	return s.selection, nil
}

func TestGenerateResolvesTheme(t *testing.T) {
	manifest := &theme.Manifest{
		Name: "acme",
		Tokens: map[string]string{
			"brand": "#123456",
		},
		Templates: map[string]string{
			"forms.input": "themes/acme/input.tmpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files:  map[string]string{"stylesheet": "theme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#654321"},
				Assets: theme.Assets{Files: map[string]string{"vendor": "vendor.dark.js"}},
			},
		},
	}
	selector := &stubThemeSelector{selection: &theme.Selection{
		Theme:    "acme",
		Variant:  "dark",
		Manifest: manifest,
	}}

	renderer := &captureRenderer{}
	orch := newCaptureOrchestrator(renderer, WithThemeSelector(selector, "acme", "dark"))

	for i := 0; i < 2; i++ {
		if _, err := orch.Generate(context.Background(), Request{Document: blogDoc(t), Model: "Author"}); err != nil {
			t.Fatalf("generate: %v", err)
		}
	}
	if selector.calls != 1 {
		t.Fatalf("selector calls = %d, want 1", selector.calls)
	}

	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatal("theme config missing")
	}
	if cfg.Theme != "acme" || cfg.Variant != "dark" {
		t.Fatalf("theme = %s/%s", cfg.Theme, cfg.Variant)
	}
	if cfg.Tokens["brand"] != "#654321" {
		t.Fatalf("variant token not merged: %q", cfg.Tokens["brand"])
	}
	if cfg.CSSVars["--brand"] != "#654321" {
		t.Fatalf("css var not derived: %q", cfg.CSSVars["--brand"])
	}
	if got := cfg.AssetURL("vendor"); got != "/assets/themes/acme/vendor.dark.js" {
		t.Fatalf("vendor asset url = %q", got)
	}
	if got := cfg.AssetURL("stylesheet"); got != "/assets/themes/acme/theme.css" {
		t.Fatalf("stylesheet asset url = %q", got)
	}
}
