package tui

import (
	"context"
	"net/url"
	"testing"

	"github.com/goliatone/go-modelform/pkg/forms"
	"github.com/goliatone/go-modelform/pkg/render"
)

type scriptDriver struct {
	inputs   []string
	areas    []string
	confirms []bool
	selects  []int

	messages []string
}

func (d *scriptDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	d.messages = append(d.messages, cfg.Message)
	next := d.inputs[0]
	d.inputs = d.inputs[1:]
	if cfg.Validator != nil {
		if err := cfg.Validator(next); err != nil {
			return "", err
		}
	}
	return next, nil
}

func (d *scriptDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	d.messages = append(d.messages, cfg.Message)
	next := d.confirms[0]
	d.confirms = d.confirms[1:]
	return next, nil
}

func (d *scriptDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	d.messages = append(d.messages, cfg.Message)
	next := d.selects[0]
	d.selects = d.selects[1:]
	return next, nil
}

func (d *scriptDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	d.messages = append(d.messages, cfg.Message)
	next := d.areas[0]
	d.areas = d.areas[1:]
	return next, nil
}

func noteSchema(t *testing.T) *forms.Schema {
	t.Helper()
	schema := forms.NewSchema("NoteForm", "Note")

	sub := forms.NewSchema("TagForm", "Tag")
	sub.MustAdd(forms.Definition{Name: "id", Type: forms.TypeHiddenKey, Optional: true, Coerce: forms.CoerceInt})
	sub.MustAdd(forms.Definition{Name: "label", Type: forms.TypeText, Label: "Label", Required: true})
	sub.MustAdd(forms.Definition{Name: forms.DeleteField, Type: forms.TypeCheckbox})

	schema.MustAdd(forms.Definition{Name: "title", Type: forms.TypeText, Label: "Title", Required: true})
	schema.MustAdd(forms.Definition{Name: "body", Type: forms.TypeTextArea, Label: "Body"})
	schema.MustAdd(forms.Definition{
		Name:       "status",
		Type:       forms.TypeSelect,
		Label:      "Status",
		AllowBlank: true,
		Choices: []forms.Choice{
			{Value: "draft", Label: "Draft"},
			{Value: "live", Label: "Live"},
		},
	})
	schema.MustAdd(forms.Definition{Name: "published", Type: forms.TypeCheckbox, Label: "Published"})
	schema.MustAdd(forms.Definition{Name: "tags", Type: forms.TypeList, Label: "Tags", Nested: sub})
	return schema
}

func TestRenderCollectsSubmission(t *testing.T) {
	driver := &scriptDriver{
		inputs:   []string{"Hello", "go"},
		areas:    []string{"Body text"},
		selects:  []int{2},
		confirms: []bool{true, true, false},
	}
	renderer := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded))

	output, err := renderer.Render(context.Background(), noteSchema(t), render.RenderOptions{
		Hidden: map[string]string{"csrf_token": "tok-1"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	values, err := url.ParseQuery(string(output))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	want := map[string]string{
		"title":        "Hello",
		"body":         "Body text",
		"status":       "live",
		"published":    "y",
		"tags-0-label": "go",
		"csrf_token":   "tok-1",
	}
	for key, expected := range want {
		if got := values.Get(key); got != expected {
			t.Errorf("%s = %q, want %q", key, got, expected)
		}
	}
	if values.Has("tags-0-delete_") {
		t.Error("delete flag should not be prompted for new entries")
	}

	form := noteSchema(t).Bind(values)
	if !form.Valid() {
		t.Fatalf("collected submission should bind cleanly: %v", form.Errors())
	}
}

func TestRenderBlankSelectChoice(t *testing.T) {
	driver := &scriptDriver{
		inputs:   []string{"Hello"},
		areas:    []string{""},
		selects:  []int{0},
		confirms: []bool{false, false},
	}
	renderer := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded))

	output, err := renderer.Render(context.Background(), noteSchema(t), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	values, err := url.ParseQuery(string(output))
	if err != nil {
		t.Fatal(err)
	}
	if got := values.Get("status"); got != forms.BlankSentinel {
		t.Fatalf("status = %q, want blank sentinel", got)
	}
}

func TestRenderRequiredValidator(t *testing.T) {
	driver := &scriptDriver{
		inputs:   []string{""},
		areas:    []string{""},
		selects:  []int{0},
		confirms: []bool{false, false},
	}
	renderer := New(WithPromptDriver(driver))

	_, err := renderer.Render(context.Background(), noteSchema(t), render.RenderOptions{})
	if err == nil {
		t.Fatal("expected required validation error")
	}
}

func TestRenderJSONOutput(t *testing.T) {
	schema := forms.NewSchema("PingForm", "Ping")
	schema.MustAdd(forms.Definition{Name: "note", Type: forms.TypeText, Label: "Note"})

	driver := &scriptDriver{inputs: []string{"hi"}}
	renderer := New(WithPromptDriver(driver))

	output, err := renderer.Render(context.Background(), schema, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if renderer.ContentType() != "application/json" {
		t.Fatalf("content type = %q", renderer.ContentType())
	}
	if string(output) != "{\n  \"note\": \"hi\"\n}" {
		t.Fatalf("output = %s", output)
	}
}
