package vanilla

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-modelform/pkg/forms"
	"github.com/goliatone/go-modelform/pkg/render"
)

func noteSchema(t *testing.T) *forms.Schema {
	t.Helper()
	sub := forms.NewSchema("TagForm", "Tag")
	sub.MustAdd(forms.Definition{Name: "id", Type: forms.TypeHiddenKey, Optional: true, Coerce: forms.CoerceInt})
	sub.MustAdd(forms.Definition{Name: "label", Type: forms.TypeText, Label: "Label", Required: true, Coerce: forms.CoerceString})
	sub.MustAdd(forms.Definition{Name: forms.DeleteField, Type: forms.TypeCheckbox, Label: "Delete"})

	schema := forms.NewSchema("NoteForm", "Note")
	schema.MustAdd(forms.Definition{Name: "title", Type: forms.TypeText, Label: "Title", Required: true, Coerce: forms.CoerceString})
	schema.MustAdd(forms.Definition{Name: "body", Type: forms.TypeTextArea, Label: "Body", Optional: true, Coerce: forms.CoerceString})
	schema.MustAdd(forms.Definition{
		Name:       "status",
		Type:       forms.TypeSelect,
		Label:      "Status",
		AllowBlank: true,
		Coerce:     forms.CoerceInt,
		Choices:    []forms.Choice{{Value: 1, Label: "Open"}, {Value: 2, Label: "Closed"}},
	})
	schema.MustAdd(forms.Definition{Name: "tags", Type: forms.TypeList, Label: "Tags", Nested: sub, ForeignKey: "note_id"})
	return schema
}

func renderToString(t *testing.T, schema *forms.Schema, options render.RenderOptions) string {
	t.Helper()
	renderer, err := New()
	if err != nil {
		t.Fatal(err)
	}
	out, err := renderer.Render(context.Background(), schema, options)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestRenderBasicForm(t *testing.T) {
	html := renderToString(t, noteSchema(t), render.RenderOptions{
		Action: "/notes",
		Method: "POST",
	})

	for _, want := range []string{
		`<form class="mf-form" action="/notes" method="post"`,
		`data-form="NoteForm"`,
		`<input type="text" id="mf-title" name="title" value="" required>`,
		`<textarea id="mf-body" name="body">`,
		`<select id="mf-status" name="status">`,
		`<option value="__None" selected>---------</option>`,
		`<option value="1">Open</option>`,
		`<fieldset class="mf-list" data-list="tags">`,
		`name="tags-__index__-label"`,
		`<button type="submit"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q\n%s", want, html)
		}
	}
}

func TestRenderMethodOverride(t *testing.T) {
	html := renderToString(t, noteSchema(t), render.RenderOptions{Method: "PUT"})
	if !strings.Contains(html, `method="post"`) {
		t.Error("PUT should fall back to a post form")
	}
	if !strings.Contains(html, `<input type="hidden" name="_method" value="PUT">`) {
		t.Error("method override input missing")
	}
}

func TestRenderPrefillsValues(t *testing.T) {
	html := renderToString(t, noteSchema(t), render.RenderOptions{
		Values: map[string]any{
			"title":        "hello",
			"status":       int64(2),
			"tags-0-id":    int64(7),
			"tags-0-label": "urgent",
		},
	})

	for _, want := range []string{
		`value="hello"`,
		`<option value="2" selected>Closed</option>`,
		`<input type="hidden" name="tags-0-id" value="7">`,
		`name="tags-0-label" value="urgent"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRenderShowsFieldErrors(t *testing.T) {
	html := renderToString(t, noteSchema(t), render.RenderOptions{
		Errors: map[string][]string{"title": {"this field is required"}},
	})
	if !strings.Contains(html, "mf-invalid") {
		t.Error("invalid chrome class missing")
	}
	if !strings.Contains(html, "<li>this field is required</li>") {
		t.Error("error message missing")
	}
}

func TestRenderSanitizesHelpText(t *testing.T) {
	schema := forms.NewSchema("NoteForm", "Note")
	schema.MustAdd(forms.Definition{
		Name:        "title",
		Type:        forms.TypeText,
		Label:       "Title",
		Description: `hint <script>alert(1)</script><em>ok</em>`,
	})

	html := renderToString(t, schema, render.RenderOptions{})
	if strings.Contains(html, "<script>") {
		t.Error("script tag should be stripped from help text")
	}
	if !strings.Contains(html, "<em>ok</em>") {
		t.Error("benign markup should survive sanitizing")
	}
}

func TestRenderModelSelectChoices(t *testing.T) {
	schema := forms.NewSchema("TagForm", "Tag")
	schema.MustAdd(forms.Definition{
		Name:   "note_id",
		Type:   forms.TypeModelSelect,
		Label:  "Note",
		Ref:    "Note",
		Coerce: forms.CoerceInt,
	})

	html := renderToString(t, schema, render.RenderOptions{
		ModelChoices: map[string][]forms.Choice{
			"note_id": {{Value: int64(1), Label: "First note"}},
		},
	})
	if !strings.Contains(html, `<option value="1">First note</option>`) {
		t.Errorf("model choices missing:\n%s", html)
	}
}

func TestRenderAppliesTheme(t *testing.T) {
	html := renderToString(t, noteSchema(t), render.RenderOptions{
		Theme: &theme.RendererConfig{
			Theme:   "midnight",
			Variant: "compact",
			CSSVars: map[string]string{"--mf-accent": "#336699"},
		},
	})
	if !strings.Contains(html, `class="mf-form midnight compact"`) {
		t.Errorf("theme classes missing:\n%s", html)
	}
	if !strings.Contains(html, "--mf-accent: #336699;") {
		t.Error("css vars style missing")
	}
}

func TestRenderCheckboxChecked(t *testing.T) {
	schema := forms.NewSchema("NoteForm", "Note")
	schema.MustAdd(forms.Definition{Name: "done", Type: forms.TypeCheckbox, Label: "Done"})

	html := renderToString(t, schema, render.RenderOptions{Values: map[string]any{"done": true}})
	if !strings.Contains(html, `value="y" checked>`) {
		t.Errorf("checkbox should be checked:\n%s", html)
	}
}

func TestEmbeddedAssets(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), StylesheetName)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), ".mf-form") {
		t.Error("stylesheet should style the form chrome")
	}
}
