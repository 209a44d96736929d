package forms

import "fmt"

// RecordSource exposes stored field values and loaded child collections so a
// schema can be prefilled from an existing record.
type RecordSource interface {
	// Get returns the stored value for a field name.
	Get(name string) (any, bool)

	// Related returns the loaded child records for a relation name, in
	// display order. Unloaded relations return nil.
	Related(name string) []RecordSource
}

// BindRecord builds a bound form from a record's stored values, the
// record-backed counterpart of Bind. No coercion or validation runs; stored
// values are trusted. List fields bind one nested entry per loaded child
// record, keyed the same way a submission would key them.
func (s *Schema) BindRecord(rec RecordSource) *Form {
	return s.bindRecord(rec, "")
}

func (s *Schema) bindRecord(rec RecordSource, prefix string) *Form {
	form := &Form{
		schema: s,
		prefix: prefix,
		index:  make(map[string]*BoundField, len(s.fields)),
	}
	for _, def := range s.fields {
		bound := &BoundField{Definition: def}
		switch {
		case def.Type == TypeList && def.Nested != nil:
			for i, child := range rec.Related(def.Name) {
				entryPrefix := fmt.Sprintf("%s%s-%d-", prefix, def.Name, i)
				bound.Entries = append(bound.Entries, def.Nested.bindRecord(child, entryPrefix))
			}
		case def.Name == DeleteField:
			bound.Value = false
		default:
			value, ok := rec.Get(def.Name)
			if !ok {
				value = def.Default
			}
			if def.Type == TypeCheckbox && value == nil {
				value = false
			}
			bound.Value = value
		}
		form.fields = append(form.fields, bound)
		form.index[def.Name] = bound
	}
	return form
}

// InputValues flattens the form's values into a map keyed by submitted input
// name, nested entries dash-prefixed. The result feeds render prefill
// (RenderOptions.Values) so an edit form redraws an existing record and its
// children.
func (f *Form) InputValues() map[string]any {
	out := make(map[string]any)
	f.collectInputValues(out)
	return out
}

func (f *Form) collectInputValues(out map[string]any) {
	for _, bound := range f.fields {
		if bound.Definition.Type == TypeList {
			for _, entry := range bound.Entries {
				entry.collectInputValues(out)
			}
			continue
		}
		if bound.Definition.Name == DeleteField || bound.Value == nil {
			continue
		}
		out[f.prefix+bound.Definition.Name] = bound.Value
	}
}
