package forms

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Form is a Schema bound to a submission: coerced values, nested entries, and
// per-field validation errors.
type Form struct {
	schema *Schema
	prefix string
	fields []*BoundField
	index  map[string]*BoundField
}

// BoundField holds the outcome of binding one field.
type BoundField struct {
	Definition Definition

	// Raw is the first submitted value for the field, when provided.
	Raw      string
	Provided bool

	// Value is the coerced, filtered value. A nil Value maps to SQL NULL.
	Value any

	Errors []string

	// Entries holds the bound sub-forms of a list field, in submission
	// order.
	Entries []*Form
}

// Bind processes a submission against the schema and returns the bound form.
// Binding never fails; malformed values surface as field errors.
func (s *Schema) Bind(values url.Values) *Form {
	return s.bind(values, "")
}

func (s *Schema) bind(values url.Values, prefix string) *Form {
	form := &Form{
		schema: s,
		prefix: prefix,
		index:  make(map[string]*BoundField, len(s.fields)),
	}
	for _, def := range s.fields {
		var bound *BoundField
		if def.Type == TypeList {
			bound = bindList(def, values, prefix+def.Name)
		} else {
			bound = bindScalar(def, values, prefix+def.Name)
		}
		form.fields = append(form.fields, bound)
		form.index[def.Name] = bound
	}
	return form
}

func bindScalar(def Definition, values url.Values, key string) *BoundField {
	bound := &BoundField{Definition: def}

	raw, provided := lookup(values, key)
	if !provided {
		if def.Type == TypeCheckbox {
			bound.Value = false
			return bound
		}
		if def.Required && !def.Optional {
			bound.Errors = append(bound.Errors, "this field is required")
			return bound
		}
		bound.Value = applyFilters(def, def.Default)
		return bound
	}

	bound.Provided = true
	bound.Raw = raw

	if def.Type == TypeCheckbox {
		value, _ := CoerceBool(raw)
		bound.Value = value
		return bound
	}

	if def.AllowBlank && raw == BlankSentinel {
		bound.Value = nil
		return bound
	}

	if raw == "" {
		if def.Required && !def.Optional {
			bound.Errors = append(bound.Errors, "this field is required")
			return bound
		}
		bound.Value = applyFilters(def, emptyValue(def))
		return bound
	}

	coerce := def.Coerce
	if coerce == nil {
		coerce = CoerceString
	}
	value, err := coerce(raw)
	if err != nil {
		if len(def.Choices) > 0 {
			bound.Errors = append(bound.Errors, "invalid choice: could not coerce")
		} else {
			bound.Errors = append(bound.Errors, err.Error())
		}
		return bound
	}

	if len(def.Choices) > 0 && (def.Type == TypeSelect || def.Type == TypeModelSelect) {
		if !hasChoice(def.Choices, value) {
			bound.Errors = append(bound.Errors, "not a valid choice")
			return bound
		}
	}

	for _, validate := range def.Validators {
		if err := validate(value); err != nil {
			bound.Errors = append(bound.Errors, err.Error())
		}
	}
	if len(bound.Errors) > 0 {
		return bound
	}

	bound.Value = applyFilters(def, value)
	return bound
}

func bindList(def Definition, values url.Values, key string) *BoundField {
	bound := &BoundField{Definition: def}
	if def.Nested == nil {
		bound.Errors = append(bound.Errors, "list field has no nested schema")
		return bound
	}
	for _, idx := range entryIndices(values, key) {
		entryPrefix := fmt.Sprintf("%s-%d-", key, idx)
		bound.Entries = append(bound.Entries, def.Nested.bind(values, entryPrefix))
	}
	return bound
}

// entryIndices extracts the distinct numeric entry positions submitted for a
// list field, sorted ascending.
func entryIndices(values url.Values, key string) []int {
	prefix := key + "-"
	seen := make(map[int]struct{})
	for name := range values {
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

func lookup(values url.Values, key string) (string, bool) {
	raw, ok := values[key]
	if !ok || len(raw) == 0 {
		return "", false
	}
	return raw[0], true
}

func applyFilters(def Definition, value any) any {
	for _, filter := range def.Filters {
		value = filter(value)
	}
	return value
}

// emptyValue picks the zero submission value for a definition: string fields
// keep the empty string (filters may still null it), everything else is nil.
func emptyValue(def Definition) any {
	if def.Coerce == nil || isStringCoercer(def) {
		return ""
	}
	return nil
}

func isStringCoercer(def Definition) bool {
	switch def.Type {
	case TypeText, TypeTextArea, TypeHidden:
		return true
	default:
		return false
	}
}

func hasChoice(choices []Choice, value any) bool {
	for _, choice := range choices {
		if choiceMatches(choice.Value, value) {
			return true
		}
	}
	return false
}

// Schema returns the schema the form was bound from.
func (f *Form) Schema() *Schema { return f.schema }

// Fields returns the bound fields in declaration order.
func (f *Form) Fields() []*BoundField {
	return append([]*BoundField(nil), f.fields...)
}

// Field returns the named bound field, or nil.
func (f *Form) Field(name string) *BoundField {
	return f.index[name]
}

// Value returns the coerced value of the named field, nil when absent.
func (f *Form) Value(name string) any {
	if bound, ok := f.index[name]; ok {
		return bound.Value
	}
	return nil
}

// Valid reports whether the form and every nested entry bound without
// validation errors.
func (f *Form) Valid() bool {
	for _, bound := range f.fields {
		if len(bound.Errors) > 0 {
			return false
		}
		for _, entry := range bound.Entries {
			if !entry.Valid() {
				return false
			}
		}
	}
	return true
}

// Errors flattens all field errors into a map keyed by the submitted input
// name, nested entries included.
func (f *Form) Errors() map[string][]string {
	out := make(map[string][]string)
	f.collectErrors(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func (f *Form) collectErrors(out map[string][]string) {
	for _, bound := range f.fields {
		if len(bound.Errors) > 0 {
			key := f.prefix + bound.Definition.Name
			out[key] = append(out[key], bound.Errors...)
		}
		for _, entry := range bound.Entries {
			entry.collectErrors(out)
		}
	}
}

// Values collects the scalar field values for persistence: list fields and
// the delete marker are skipped.
func (f *Form) Values() map[string]any {
	out := make(map[string]any, len(f.fields))
	for _, bound := range f.fields {
		if bound.Definition.Type == TypeList || bound.Definition.Name == DeleteField {
			continue
		}
		out[bound.Definition.Name] = bound.Value
	}
	return out
}

// Deleted reports whether the form's delete marker was checked.
func (f *Form) Deleted() bool {
	value, _ := f.Value(DeleteField).(bool)
	return value
}
