package modelschema

import (
	"errors"
	"fmt"
	"sort"
)

var (
	errModelNameMissing = errors.New("modelschema: model name is required")
	errModelNoFields    = errors.New("modelschema: model declares no fields")
)

// Registry groups a set of models so foreign-key references and reverse
// relations resolve by name.
type Registry struct {
	models map[string]*Model
	order  []string
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// Register adds a model to the registry. Registering the same name twice is
// an error.
func (r *Registry) Register(model *Model) error {
	if model == nil {
		return errors.New("modelschema: model is nil")
	}
	if model.Name == "" {
		return errModelNameMissing
	}
	if len(model.Fields) == 0 {
		return fmt.Errorf("modelschema: model %q: %w", model.Name, errModelNoFields)
	}
	if _, exists := r.models[model.Name]; exists {
		return fmt.Errorf("modelschema: model %q already registered", model.Name)
	}
	r.models[model.Name] = model
	r.order = append(r.order, model.Name)
	return nil
}

// MustRegister panics on registration failure. Useful for fixtures.
func (r *Registry) MustRegister(model *Model) {
	if err := r.Register(model); err != nil {
		panic(err)
	}
}

// Lookup returns the named model.
func (r *Registry) Lookup(name string) (*Model, bool) {
	model, ok := r.models[name]
	return model, ok
}

// Names returns registered model names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Validate checks referential integrity across the registry: every
// foreign-key Ref and every relation child must resolve, relation FKs must
// point back at the parent, and any model that owns children needs a primary
// key.
func (r *Registry) Validate() error {
	names := append([]string(nil), r.order...)
	sort.Strings(names)

	for _, name := range names {
		model := r.models[name]
		for _, field := range model.Fields {
			if field.Kind != KindForeignKey {
				continue
			}
			if field.Ref == "" {
				return fmt.Errorf("modelschema: %s.%s: foreignkey field missing ref", name, field.Name)
			}
			if _, ok := r.models[field.Ref]; !ok {
				return fmt.Errorf("modelschema: %s.%s: unknown ref model %q", name, field.Name, field.Ref)
			}
		}
		for _, rel := range model.Relations {
			child, ok := r.models[rel.Child]
			if !ok {
				return fmt.Errorf("modelschema: %s relation %q: unknown child model %q", name, rel.Name, rel.Child)
			}
			fk := child.FieldByName(rel.ForeignKey)
			if fk == nil {
				return fmt.Errorf("modelschema: %s relation %q: child %q has no field %q", name, rel.Name, rel.Child, rel.ForeignKey)
			}
			if fk.Kind != KindForeignKey || fk.Ref != name {
				return fmt.Errorf("modelschema: %s relation %q: child field %s.%s does not reference %s", name, rel.Name, rel.Child, rel.ForeignKey, name)
			}
			if model.PrimaryKey() == nil {
				return fmt.Errorf("modelschema: %s owns relation %q but declares no primary key", name, rel.Name)
			}
			if child.PrimaryKey() == nil {
				return fmt.Errorf("modelschema: child model %q of relation %q declares no primary key", rel.Child, rel.Name)
			}
		}
	}
	return nil
}
