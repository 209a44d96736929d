package modelschema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Document wraps a raw model-set payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("modelschema: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("modelschema: raw document is empty")
	}
	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// FetchDocument retrieves a model-set document over HTTP. A nil client uses
// http.DefaultClient. The returned Document carries a URL source so adapters
// can still detect the format from the location.
func FetchDocument(ctx context.Context, client *http.Client, rawURL string) (Document, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Document{}, fmt.Errorf("modelschema: request %s: %w", rawURL, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("modelschema: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("modelschema: fetch %s: unexpected status %s", rawURL, resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, fmt.Errorf("modelschema: read %s: %w", rawURL, err)
	}
	return NewDocument(SourceFromURL(rawURL), raw)
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source { return d.source }

// Raw returns a copy of the document payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}
