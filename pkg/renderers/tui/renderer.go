// Package tui collects form submissions interactively in the terminal. It
// walks a form schema, prompts for every visible field, and serializes the
// answers so they can be bound and persisted like any browser submission.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-modelform/pkg/forms"
	"github.com/goliatone/go-modelform/pkg/render"
)

const defaultMaxEntries = 20

// Renderer implements render.Renderer for terminal-driven sessions.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	maxEntries   int
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		maxEntries:   defaultMaxEntries,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatFormURLEncoded {
		return "application/x-www-form-urlencoded"
	}
	return "application/json"
}

// Render prompts for every field in the schema and returns the collected
// submission. Hidden fields are carried over from the render options without
// prompting.
func (r *Renderer) Render(ctx context.Context, schema *forms.Schema, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, errors.New("tui: schema is required")
	}

	collected := url.Values{}
	if err := r.promptSchema(ctx, schema, "", options, collected); err != nil {
		return nil, err
	}
	for name, value := range options.Hidden {
		collected.Set(name, value)
	}
	return r.serialize(collected)
}

func (r *Renderer) promptSchema(ctx context.Context, schema *forms.Schema, prefix string, options render.RenderOptions, collected url.Values) error {
	for _, def := range schema.Fields() {
		key := prefix + def.Name
		if def.Name == forms.DeleteField {
			continue
		}

		switch def.Type {
		case forms.TypeHidden, forms.TypeHiddenKey:
			if value := prefillFor(options, key); value != "" {
				collected.Set(key, value)
			}
		case forms.TypeList:
			if err := r.promptList(ctx, def, key, options, collected); err != nil {
				return err
			}
		case forms.TypeCheckbox:
			if err := r.promptCheckbox(ctx, def, key, options, collected); err != nil {
				return err
			}
		case forms.TypeSelect, forms.TypeModelSelect:
			if err := r.promptSelect(ctx, def, key, options, collected); err != nil {
				return err
			}
		case forms.TypeTextArea:
			if err := r.promptTextArea(ctx, def, key, options, collected); err != nil {
				return err
			}
		default:
			if err := r.promptInput(ctx, def, key, options, collected); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) promptList(ctx context.Context, def forms.Definition, key string, options render.RenderOptions, collected url.Values) error {
	if def.Nested == nil {
		return nil
	}
	for i := 0; i < r.maxEntries; i++ {
		add, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add %s entry?", promptLabel(def)),
		})
		if err != nil {
			return err
		}
		if !add {
			return nil
		}
		entryPrefix := fmt.Sprintf("%s-%d-", key, i)
		if err := r.promptSchema(ctx, def.Nested, entryPrefix, options, collected); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptCheckbox(ctx context.Context, def forms.Definition, key string, options render.RenderOptions, collected url.Values) error {
	checked, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: promptLabel(def) + "?",
		Default: prefillFor(options, key) == "y",
		Help:    def.Description,
	})
	if err != nil {
		return err
	}
	if checked {
		collected.Set(key, "y")
	}
	return nil
}

func (r *Renderer) promptSelect(ctx context.Context, def forms.Definition, key string, options render.RenderOptions, collected url.Values) error {
	choices := def.Choices
	if def.Type == forms.TypeModelSelect && len(options.ModelChoices[def.Name]) > 0 {
		choices = options.ModelChoices[def.Name]
	}

	labels := make([]string, 0, len(choices)+1)
	values := make([]string, 0, len(choices)+1)
	if def.AllowBlank {
		blank := def.BlankText
		if blank == "" {
			blank = "---------"
		}
		labels = append(labels, blank)
		values = append(values, forms.BlankSentinel)
	}
	for _, choice := range choices {
		labels = append(labels, choice.Label)
		values = append(values, fmt.Sprint(choice.Value))
	}
	if len(labels) == 0 {
		return fmt.Errorf("tui: field %q has no selectable choices", key)
	}

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      promptLabel(def) + ":",
		Options:      labels,
		DefaultIndex: defaultChoiceIndex(values, prefillFor(options, key)),
		Help:         def.Description,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(values) {
		return fmt.Errorf("tui: field %q selection out of range", key)
	}
	collected.Set(key, values[idx])
	return nil
}

func (r *Renderer) promptTextArea(ctx context.Context, def forms.Definition, key string, options render.RenderOptions, collected url.Values) error {
	value, err := r.driver.TextArea(ctx, TextAreaConfig{
		Message: promptLabel(def) + ":",
		Default: prefillFor(options, key),
		Help:    def.Description,
	})
	if err != nil {
		return err
	}
	if value != "" {
		collected.Set(key, value)
	}
	return nil
}

func (r *Renderer) promptInput(ctx context.Context, def forms.Definition, key string, options render.RenderOptions, collected url.Values) error {
	cfg := InputConfig{
		Message: promptLabel(def) + ":",
		Default: prefillFor(options, key),
		Help:    def.Description,
	}
	if cfg.Default == "" && def.Default != nil {
		cfg.Default = fmt.Sprint(def.Default)
	}
	if def.Required && !def.Optional {
		cfg.Validator = func(value string) error {
			if strings.TrimSpace(value) == "" {
				return errors.New("this field is required")
			}
			return nil
		}
	}

	value, err := r.driver.Input(ctx, cfg)
	if err != nil {
		return err
	}
	if value != "" {
		collected.Set(key, value)
	}
	return nil
}

func (r *Renderer) serialize(collected url.Values) ([]byte, error) {
	if r.outputFormat == OutputFormatFormURLEncoded {
		return []byte(collected.Encode()), nil
	}
	payload := make(map[string]any, len(collected))
	for key, entries := range collected {
		if len(entries) == 1 {
			payload[key] = entries[0]
			continue
		}
		payload[key] = entries
	}
	return json.MarshalIndent(payload, "", "  ")
}

func promptLabel(def forms.Definition) string {
	if def.Label != "" {
		return def.Label
	}
	return def.Name
}

func prefillFor(options render.RenderOptions, key string) string {
	value, ok := options.Values[key]
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

func defaultChoiceIndex(values []string, prefill string) int {
	if prefill == "" {
		return 0
	}
	for i, value := range values {
		if value == prefill {
			return i
		}
	}
	return 0
}
