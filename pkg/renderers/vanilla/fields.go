package vanilla

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-modelform/pkg/forms"
	"github.com/goliatone/go-modelform/pkg/render"
)

// entryTemplateIndex is the placeholder clients replace when cloning the
// blank entry of a list field.
const entryTemplateIndex = "__index__"

type fieldRenderer struct {
	options  render.RenderOptions
	sanitize *bluemonday.Policy
}

func newFieldRenderer(options render.RenderOptions, sanitize *bluemonday.Policy) *fieldRenderer {
	if sanitize == nil {
		sanitize = bluemonday.UGCPolicy()
	}
	return &fieldRenderer{options: options, sanitize: sanitize}
}

// renderAll draws every field of the schema with the given input-name prefix.
func (r *fieldRenderer) renderAll(schema *forms.Schema, prefix string) (string, error) {
	var b strings.Builder
	for _, def := range schema.Fields() {
		markup, err := r.render(def, prefix)
		if err != nil {
			return "", err
		}
		b.WriteString(markup)
	}
	return b.String(), nil
}

func (r *fieldRenderer) render(def forms.Definition, prefix string) (string, error) {
	key := prefix + def.Name

	if def.Type == forms.TypeList {
		return r.renderList(def, key)
	}

	control, err := r.control(def, key)
	if err != nil {
		return "", err
	}

	if def.Type == forms.TypeHidden || def.Type == forms.TypeHiddenKey {
		// Hidden controls get no chrome.
		return control + "\n", nil
	}

	errs := r.options.Errors[key]

	var b strings.Builder
	b.WriteString(`<div class="mf-field mf-field-`)
	b.WriteString(string(def.Type))
	if len(errs) > 0 {
		b.WriteString(" mf-invalid")
	}
	b.WriteString(`" data-field="`)
	b.WriteString(html.EscapeString(key))
	b.WriteString("\">\n")

	if def.Type == forms.TypeCheckbox {
		// Checkbox labels wrap the control.
		b.WriteString(`  <label class="mf-label">`)
		b.WriteString(control)
		b.WriteByte(' ')
		b.WriteString(html.EscapeString(def.Label))
		b.WriteString("</label>\n")
	} else {
		b.WriteString(`  <label class="mf-label" for="`)
		b.WriteString(controlID(key))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(def.Label))
		b.WriteString("</label>\n  ")
		b.WriteString(control)
		b.WriteByte('\n')
	}

	if def.Description != "" {
		b.WriteString(`  <p class="mf-help">`)
		b.WriteString(r.sanitize.Sanitize(def.Description))
		b.WriteString("</p>\n")
	}
	if len(errs) > 0 {
		b.WriteString("  <ul class=\"mf-errors\">\n")
		for _, msg := range errs {
			b.WriteString("    <li>")
			b.WriteString(html.EscapeString(msg))
			b.WriteString("</li>\n")
		}
		b.WriteString("  </ul>\n")
	}
	b.WriteString("</div>\n")
	return b.String(), nil
}

func (r *fieldRenderer) control(def forms.Definition, key string) (string, error) {
	value := r.value(def, key)

	switch def.Type {
	case forms.TypeText:
		return r.input("text", def, key, formatValue(def, value)), nil
	case forms.TypeTextArea:
		return fmt.Sprintf(`<textarea id="%s" name="%s"%s>%s</textarea>`,
			controlID(key), html.EscapeString(key), requiredAttr(def),
			html.EscapeString(formatValue(def, value))), nil
	case forms.TypeInteger:
		return r.numberInput(def, key, value, "1"), nil
	case forms.TypeDecimal:
		return r.numberInput(def, key, value, "any"), nil
	case forms.TypeCheckbox:
		checked := ""
		if isChecked(value) {
			checked = " checked"
		}
		return fmt.Sprintf(`<input type="checkbox" id="%s" name="%s" value="y"%s>`,
			controlID(key), html.EscapeString(key), checked), nil
	case forms.TypeDate:
		return r.input("date", def, key, formatValue(def, value)), nil
	case forms.TypeTime:
		return r.input("time", def, key, formatValue(def, value)), nil
	case forms.TypeDateTime:
		return r.input("datetime-local", def, key, formatValue(def, value)), nil
	case forms.TypeSelect:
		return r.selectControl(def, key, value, def.Choices), nil
	case forms.TypeModelSelect:
		choices := r.options.ModelChoices[def.Name]
		if len(choices) == 0 {
			choices = def.Choices
		}
		return r.selectControl(def, key, value, choices), nil
	case forms.TypeHidden, forms.TypeHiddenKey:
		return fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`,
			html.EscapeString(key), html.EscapeString(formatValue(def, value))), nil
	default:
		return "", fmt.Errorf("vanilla renderer: field %q: no widget for type %q", key, def.Type)
	}
}

func (r *fieldRenderer) input(inputType string, def forms.Definition, key, value string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<input type="%s" id="%s" name="%s" value="%s"`,
		inputType, controlID(key), html.EscapeString(key), html.EscapeString(value))
	b.WriteString(requiredAttr(def))
	b.WriteByte('>')
	return b.String()
}

func (r *fieldRenderer) numberInput(def forms.Definition, key string, value any, step string) string {
	return fmt.Sprintf(`<input type="number" step="%s" id="%s" name="%s" value="%s"%s>`,
		step, controlID(key), html.EscapeString(key),
		html.EscapeString(formatValue(def, value)), requiredAttr(def))
}

func (r *fieldRenderer) selectControl(def forms.Definition, key string, value any, choices []forms.Choice) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<select id="%s" name="%s"%s>`, controlID(key), html.EscapeString(key), requiredAttr(def))

	if def.AllowBlank {
		blank := def.BlankText
		if blank == "" {
			blank = "---------"
		}
		selected := ""
		if value == nil {
			selected = " selected"
		}
		fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`,
			forms.BlankSentinel, selected, html.EscapeString(blank))
	}

	current := ""
	if value != nil {
		current = fmt.Sprint(value)
	}
	for _, choice := range choices {
		selected := ""
		if current != "" && fmt.Sprint(choice.Value) == current {
			selected = " selected"
		}
		fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`,
			html.EscapeString(fmt.Sprint(choice.Value)), selected, html.EscapeString(choice.Label))
	}
	b.WriteString("</select>")
	return b.String()
}

// renderList draws the existing entries of a nested collection plus a blank
// template block clients clone when adding rows.
func (r *fieldRenderer) renderList(def forms.Definition, key string) (string, error) {
	if def.Nested == nil {
		return "", fmt.Errorf("vanilla renderer: list field %q has no nested schema", key)
	}

	var b strings.Builder
	b.WriteString(`<fieldset class="mf-list" data-list="`)
	b.WriteString(html.EscapeString(key))
	b.WriteString("\">\n  <legend>")
	b.WriteString(html.EscapeString(def.Label))
	b.WriteString("</legend>\n")

	for _, idx := range r.entryIndices(key) {
		entryPrefix := fmt.Sprintf("%s-%d-", key, idx)
		markup, err := r.renderEntry(def.Nested, entryPrefix)
		if err != nil {
			return "", err
		}
		b.WriteString(markup)
	}

	blankPrefix := fmt.Sprintf("%s-%s-", key, entryTemplateIndex)
	blank, err := r.renderEntry(def.Nested, blankPrefix)
	if err != nil {
		return "", err
	}
	b.WriteString("  <template class=\"mf-entry-template\">\n")
	b.WriteString(blank)
	b.WriteString("  </template>\n")
	b.WriteString(`  <button type="button" class="mf-add-entry" data-list-add="`)
	b.WriteString(html.EscapeString(key))
	b.WriteString("\">Add</button>\n</fieldset>\n")
	return b.String(), nil
}

func (r *fieldRenderer) renderEntry(schema *forms.Schema, prefix string) (string, error) {
	fields, err := r.renderAll(schema, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("  <div class=\"mf-entry\">\n%s  </div>\n", fields), nil
}

// entryIndices finds the entry positions present in the prefill values,
// sorted ascending.
func (r *fieldRenderer) entryIndices(key string) []int {
	prefix := key + "-"
	seen := make(map[int]struct{})
	for name := range r.options.Values {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := name[len(prefix):]
		cut := strings.IndexByte(rest, '-')
		if cut <= 0 {
			continue
		}
		idx, err := strconv.Atoi(rest[:cut])
		if err != nil || idx < 0 {
			continue
		}
		seen[idx] = struct{}{}
	}
	indices := make([]int, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

func (r *fieldRenderer) value(def forms.Definition, key string) any {
	if value, ok := r.options.Values[key]; ok {
		return value
	}
	return def.Default
}

func controlID(key string) string {
	return "mf-" + html.EscapeString(key)
}

func requiredAttr(def forms.Definition) string {
	if def.Required && !def.Optional {
		return " required"
	}
	return ""
}

func isChecked(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "", "0", "false", "off":
			return false
		default:
			return true
		}
	default:
		return false
	}
}

func formatValue(def forms.Definition, value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		switch def.Type {
		case forms.TypeDate:
			return v.Format("2006-01-02")
		case forms.TypeTime:
			return v.Format("15:04:05")
		default:
			return v.Format("2006-01-02T15:04")
		}
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
