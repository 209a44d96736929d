package persist

import (
	"context"

	"github.com/goliatone/go-modelform/pkg/modelschema"
)

// Tx is the transaction handle a Store hands back from Begin. The coordinator
// threads it through every write so the whole cascade commits or rolls back
// as one unit.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store is the persistence collaborator: it knows how to write model records
// and enumerate a parent's children, but nothing about forms.
type Store interface {
	// Begin opens the transaction scope for one cascade save.
	Begin(ctx context.Context) (Tx, error)

	// Insert writes a new record and returns its primary-key value. Values
	// map field names to column values; a missing primary key means the
	// store generates one (auto-increment, uuid).
	Insert(ctx context.Context, tx Tx, model *modelschema.Model, values map[string]any) (any, error)

	// Update rewrites the named columns of the record with the given
	// primary key.
	Update(ctx context.Context, tx Tx, model *modelschema.Model, pk any, values map[string]any) error

	// Delete removes the record with the given primary key. Descendant
	// cleanup is the schema's concern (ON DELETE CASCADE).
	Delete(ctx context.Context, tx Tx, model *modelschema.Model, pk any) error

	// RelatedKeys returns the primary keys of the child records whose
	// foreign-key field points at the parent key.
	RelatedKeys(ctx context.Context, tx Tx, child *modelschema.Model, fk *modelschema.Field, parentKey any) ([]any, error)
}
