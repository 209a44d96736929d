package modelschema

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const blogDocument = `
models:
  - name: Blog
    table: blogs
    fields:
      - {name: id, kind: autokey}
      - {name: title, kind: char, maxLength: 255}
      - {name: status, kind: int, default: 1}
    relations:
      - {name: entries, child: Entry, foreignKey: blog_id}
  - name: Entry
    table: entries
    fields:
      - {name: id, kind: autokey}
      - {name: blog_id, kind: foreignkey, ref: Blog}
      - {name: title, kind: char}
      - {name: content, kind: text, null: true}
`

func TestParseYAML(t *testing.T) {
	doc := MustNewDocument(SourceFromFile("blog.yaml"), []byte(blogDocument))
	registry, err := ParseYAML(doc)
	if err != nil {
		t.Fatal(err)
	}

	blog, ok := registry.Lookup("Blog")
	if !ok {
		t.Fatal("Blog missing")
	}
	pk := blog.PrimaryKey()
	if pk == nil || pk.Name != "id" {
		t.Fatalf("autokey should be promoted to primary key, got %+v", pk)
	}

	status := blog.FieldByName("status")
	if status == nil || !status.HasDefault || status.Default != 1 {
		t.Errorf("status = %+v", status)
	}

	entry, _ := registry.Lookup("Entry")
	content := entry.FieldByName("content")
	if content == nil || !content.Null {
		t.Errorf("content = %+v", content)
	}
}

func TestParseYAMLRejectsEmptyDocument(t *testing.T) {
	doc := MustNewDocument(SourceFromFile("empty.yaml"), []byte("models: []"))
	if _, err := ParseYAML(doc); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseYAMLRejectsBrokenReferences(t *testing.T) {
	raw := `
models:
  - name: Entry
    fields:
      - {name: id, kind: autokey}
      - {name: blog_id, kind: foreignkey, ref: Blog}
`
	doc := MustNewDocument(SourceFromFile("broken.yaml"), []byte(raw))
	_, err := ParseYAML(doc)
	if err == nil || !strings.Contains(err.Error(), `unknown ref model "Blog"`) {
		t.Fatalf("got %v", err)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte(blogDocument), 0o600); err != nil {
		t.Fatal(err)
	}

	registry, err := LoadYAMLFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(registry.Names()) != 2 {
		t.Errorf("names = %v", registry.Names())
	}

	if _, err := LoadYAMLFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadYAMLURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.yaml" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, blogDocument)
	}))
	defer server.Close()

	registry, err := LoadYAMLURL(context.Background(), server.Client(), server.URL+"/models.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(registry.Names()) != 2 {
		t.Errorf("names = %v", registry.Names())
	}

	if _, err := LoadYAMLURL(context.Background(), server.Client(), server.URL+"/missing.yaml"); err == nil {
		t.Error("expected error for missing resource")
	}
}

func TestFetchDocumentKeepsURLSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, blogDocument)
	}))
	defer server.Close()

	target := server.URL + "/models.yaml"
	doc, err := FetchDocument(context.Background(), server.Client(), target)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Source().Kind() != SourceKindURL || doc.Location() != target {
		t.Errorf("source = %v %q", doc.Source().Kind(), doc.Location())
	}
}
