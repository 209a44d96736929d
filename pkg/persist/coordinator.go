package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-modelform/pkg/forms"
	"github.com/goliatone/go-modelform/pkg/modelschema"
)

var (
	// ErrForeignChild rejects a submitted child key that does not belong to
	// the current parent's related set.
	ErrForeignChild = errors.New("persist: cannot save data to a foreign child")

	// ErrReparent rejects a submission that would move a child under a
	// different parent.
	ErrReparent = errors.New("persist: cannot change parentage of a child")

	// ErrInvalidForm rejects saving a form that carries validation errors.
	ErrInvalidForm = errors.New("persist: form has validation errors")
)

// Coordinator persists bound forms through a Store, cascading into nested
// collections.
type Coordinator struct {
	store    Store
	registry *modelschema.Registry
}

// NewCoordinator wires a Coordinator to its store and model registry.
func NewCoordinator(store Store, registry *modelschema.Registry) (*Coordinator, error) {
	if store == nil {
		return nil, errors.New("persist: store is nil")
	}
	if registry == nil {
		return nil, errors.New("persist: registry is nil")
	}
	return &Coordinator{store: store, registry: registry}, nil
}

// Save applies the bound form to the record and persists the record plus all
// nested collections inside one transaction. The record's primary key decides
// insert versus update; after a successful save a fresh insert carries its
// generated key.
func (c *Coordinator) Save(ctx context.Context, form *forms.Form, rec *Record) error {
	if form == nil {
		return errors.New("persist: form is nil")
	}
	if rec == nil {
		return errors.New("persist: record is nil")
	}
	if form.Schema().Model != rec.Model().Name {
		return fmt.Errorf("persist: form targets model %q, record is %q", form.Schema().Model, rec.Model().Name)
	}
	if !form.Valid() {
		return ErrInvalidForm
	}

	tx, err := c.store.Begin(ctx)
	if err != nil {
		return err
	}

	if err := c.saveRecord(ctx, tx, form, rec); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// saveRecord persists the top-level record then walks its list fields.
func (c *Coordinator) saveRecord(ctx context.Context, tx Tx, form *forms.Form, rec *Record) error {
	model := rec.Model()
	pkField := model.PrimaryKey()

	for name, value := range form.Values() {
		if pkField != nil && name == pkField.Name {
			// The record's identity is fixed by the caller, never by a
			// submitted key.
			continue
		}
		rec.Set(name, value)
	}

	if rec.PK() == nil {
		pk, err := c.store.Insert(ctx, tx, model, rec.Values())
		if err != nil {
			return err
		}
		rec.SetPK(pk)
	} else {
		values := rec.Values()
		if pkField != nil {
			delete(values, pkField.Name)
		}
		if err := c.store.Update(ctx, tx, model, rec.PK(), values); err != nil {
			return err
		}
	}

	return c.saveNested(ctx, tx, form, model, rec.PK())
}

// saveNested reconciles every nested collection of the form against the
// parent's existing children: create the keyless, verify ownership of the
// keyed, delete the flagged, update the rest, and recurse.
func (c *Coordinator) saveNested(ctx context.Context, tx Tx, form *forms.Form, parent *modelschema.Model, parentKey any) error {
	for _, bound := range form.Fields() {
		def := bound.Definition
		if def.Type != forms.TypeList || def.Nested == nil {
			continue
		}

		child, ok := c.registry.Lookup(def.Nested.Model)
		if !ok {
			return fmt.Errorf("persist: list field %q: unknown child model %q", def.Name, def.Nested.Model)
		}
		childPK := child.PrimaryKey()
		if childPK == nil {
			return fmt.Errorf("persist: list field %q: child model %q has no primary key", def.Name, child.Name)
		}
		fk := child.FieldByName(def.ForeignKey)
		if fk == nil {
			return fmt.Errorf("persist: list field %q: child model %q has no field %q", def.Name, child.Name, def.ForeignKey)
		}

		existing, err := c.store.RelatedKeys(ctx, tx, child, fk, parentKey)
		if err != nil {
			return err
		}
		owned := make(map[string]struct{}, len(existing))
		for _, key := range existing {
			owned[keyString(key)] = struct{}{}
		}

		for _, entry := range bound.Entries {
			if err := c.saveEntry(ctx, tx, entry, child, childPK, fk, parentKey, owned); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Coordinator) saveEntry(ctx context.Context, tx Tx, entry *forms.Form, child *modelschema.Model, childPK, fk *modelschema.Field, parentKey any, owned map[string]struct{}) error {
	key := entry.Value(childPK.Name)
	values := entry.Values()
	delete(values, childPK.Name)

	if key == nil {
		if entry.Deleted() {
			return nil
		}
		// New child: link to the parent and create it.
		values[fk.Name] = parentKey
		newKey, err := c.store.Insert(ctx, tx, child, values)
		if err != nil {
			return err
		}
		return c.saveNested(ctx, tx, entry, child, newKey)
	}

	if _, ok := owned[keyString(key)]; !ok {
		// Trivial to attempt with hand-edited hidden key inputs, so it has
		// to hard-fail rather than write.
		return fmt.Errorf("%w (key %v)", ErrForeignChild, key)
	}
	if submitted, ok := values[fk.Name]; ok && submitted != nil && keyString(submitted) != keyString(parentKey) {
		// The generated form never includes the FK field, but a custom
		// converter might reintroduce it.
		return fmt.Errorf("%w (key %v)", ErrReparent, key)
	}
	delete(values, fk.Name)

	if entry.Deleted() {
		return c.store.Delete(ctx, tx, child, key)
	}

	if err := c.store.Update(ctx, tx, child, key, values); err != nil {
		return err
	}
	return c.saveNested(ctx, tx, entry, child, key)
}

// keyString normalizes primary-key values for set membership: stores return
// int64 where forms may carry int, and uuids may be fmt.Stringers.
func keyString(key any) string {
	return fmt.Sprint(key)
}
