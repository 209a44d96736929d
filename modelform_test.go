package modelform_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	modelform "github.com/goliatone/go-modelform"
)

const fixtureYAML = `
models:
  - name: Contact
    table: contacts
    fields:
      - {name: id, kind: autokey}
      - {name: email, kind: char, maxLength: 120}
      - {name: notes, kind: text, null: true}
`

func fixturePath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.yaml")
	if err := os.WriteFile(path, []byte(fixtureYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGenerateHTML(t *testing.T) {
	output, err := modelform.GenerateHTML(context.Background(), fixturePath(t), "Contact", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(output)
	if !strings.Contains(html, "<form") || !strings.Contains(html, `name="email"`) {
		t.Fatalf("unexpected output:\n%s", html)
	}
}

func TestSchemaFor(t *testing.T) {
	schema, err := modelform.SchemaFor(context.Background(), fixturePath(t), "Contact")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if schema.Model != "Contact" {
		t.Fatalf("model = %q", schema.Model)
	}
	if _, ok := schema.Field("email"); !ok {
		t.Fatal("email field missing")
	}
	if _, ok := schema.Field("id"); ok {
		t.Fatal("primary key should be dropped from edit forms")
	}
}

func TestEmbeddedBundles(t *testing.T) {
	if _, err := fs.ReadFile(modelform.EmbeddedTemplates(), "templates/form.tmpl"); err != nil {
		t.Fatalf("templates bundle: %v", err)
	}
	entries, err := fs.ReadDir(modelform.EmbeddedAssets(), ".")
	if err != nil || len(entries) == 0 {
		t.Fatalf("assets bundle: %v (%d entries)", err, len(entries))
	}
}
