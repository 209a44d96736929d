package gotemplate

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
)

func testEngine(t *testing.T, options ...Option) *Engine {
	t.Helper()
	files := fstest.MapFS{
		"greeting.tpl":  {Data: []byte("Hello {{ name }}")},
		"layout.html":   {Data: []byte("<p>{{ body }}</p>")},
		"globals.tpl":   {Data: []byte("{{ app }}/{{ name }}")},
		"badsyntax.tpl": {Data: []byte("{% broken")},
	}
	engine, err := New(append([]Option{WithFS(files)}, options...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestRenderTemplateAppendsExtension(t *testing.T) {
	engine := testEngine(t)

	out, err := engine.RenderTemplate("greeting", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Hello Ada" {
		t.Fatalf("out = %q", out)
	}
}

func TestRenderTemplateKeepsExplicitExtension(t *testing.T) {
	engine := testEngine(t, WithExtension(".html"))

	out, err := engine.RenderTemplate("layout.html", map[string]any{"body": "hi"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "<p>hi</p>" {
		t.Fatalf("out = %q", out)
	}
}

func TestRenderStringDetection(t *testing.T) {
	engine := testEngine(t)

	out, err := engine.Render("{{ greeting }} world", map[string]any{"greeting": "hello"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "hello world" {
		t.Fatalf("out = %q", out)
	}
}

func TestRenderWritesToWriter(t *testing.T) {
	engine := testEngine(t)

	var buf bytes.Buffer
	out, err := engine.RenderString("{{ value }}", map[string]any{"value": "x"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "x" || buf.String() != "x" {
		t.Fatalf("out = %q, buffer = %q", out, buf.String())
	}
}

func TestGlobalContext(t *testing.T) {
	engine := testEngine(t, WithGlobalData(map[string]any{"app": "modelform"}))

	out, err := engine.RenderTemplate("globals", map[string]any{"name": "cli"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "modelform/cli" {
		t.Fatalf("out = %q", out)
	}
}

func TestTemplateErrors(t *testing.T) {
	engine := testEngine(t)

	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatal("expected error for missing template")
	}
	if _, err := engine.RenderTemplate("badsyntax", nil); err == nil {
		t.Fatal("expected error for broken template")
	}
}

func TestNewRequiresSource(t *testing.T) {
	_, err := New()
	if err == nil || !strings.Contains(err.Error(), "base dir or fs.FS") {
		t.Fatalf("err = %v", err)
	}
}
