// Package pgxstore implements persist.Store over a pgxpool.Pool. Unlike
// sqlstore it is postgres-only, so inserts always read generated keys back
// with RETURNING.
package pgxstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goliatone/go-modelform/pkg/modelschema"
	"github.com/goliatone/go-modelform/pkg/persist"
)

// Store is a pgx-backed persist.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Connect parses the connection string and dials the pool.
func Connect(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("pgxstore: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgxstore: ping: %w", err)
	}
	return New(pool), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool exposes the underlying pool.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Close closes the pool.
func (s *Store) Close() { s.pool.Close() }

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *pgxTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// Begin opens the transaction for one cascade save.
func (s *Store) Begin(ctx context.Context) (persist.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("pgxstore: begin: %w", err)
	}
	return &pgxTx{tx: tx}, nil
}

// Insert writes a new row and returns its primary key.
func (s *Store) Insert(ctx context.Context, tx persist.Tx, model *modelschema.Model, values map[string]any) (any, error) {
	handle, err := unwrap(tx)
	if err != nil {
		return nil, err
	}
	pk := model.PrimaryKey()

	row := make(map[string]any, len(values))
	for name, value := range values {
		row[name] = value
	}
	if pk != nil && pk.Kind == modelschema.KindUUID && row[pk.Name] == nil {
		row[pk.Name] = uuid.NewString()
	}

	columns, args, err := orderedColumns(model, row)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("pgxstore: insert into %s: no values", model.TableName())
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		model.TableName(), strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if pk == nil {
		if _, err := handle.Exec(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("pgxstore: insert into %s: %w", model.TableName(), err)
		}
		return nil, nil
	}

	query += " RETURNING " + pk.ColumnName()
	var key any
	if err := handle.QueryRow(ctx, query, args...).Scan(&key); err != nil {
		return nil, fmt.Errorf("pgxstore: insert into %s: %w", model.TableName(), err)
	}
	return key, nil
}

// Update rewrites the named columns of one row.
func (s *Store) Update(ctx context.Context, tx persist.Tx, model *modelschema.Model, pk any, values map[string]any) error {
	handle, err := unwrap(tx)
	if err != nil {
		return err
	}
	pkField := model.PrimaryKey()
	if pkField == nil {
		return fmt.Errorf("pgxstore: update %s: model has no primary key", model.TableName())
	}

	columns, args, err := orderedColumns(model, values)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return nil
	}

	assignments := make([]string, len(columns))
	for i, column := range columns {
		assignments[i] = fmt.Sprintf("%s = $%d", column, i+1)
	}
	args = append(args, pk)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		model.TableName(), strings.Join(assignments, ", "),
		pkField.ColumnName(), len(columns)+1)

	if _, err := handle.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("pgxstore: update %s: %w", model.TableName(), err)
	}
	return nil
}

// Delete removes one row by primary key.
func (s *Store) Delete(ctx context.Context, tx persist.Tx, model *modelschema.Model, pk any) error {
	handle, err := unwrap(tx)
	if err != nil {
		return err
	}
	pkField := model.PrimaryKey()
	if pkField == nil {
		return fmt.Errorf("pgxstore: delete from %s: model has no primary key", model.TableName())
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", model.TableName(), pkField.ColumnName())
	if _, err := handle.Exec(ctx, query, pk); err != nil {
		return fmt.Errorf("pgxstore: delete from %s: %w", model.TableName(), err)
	}
	return nil
}

// RelatedKeys lists the primary keys of the child rows owned by parentKey.
func (s *Store) RelatedKeys(ctx context.Context, tx persist.Tx, child *modelschema.Model, fk *modelschema.Field, parentKey any) ([]any, error) {
	handle, err := unwrap(tx)
	if err != nil {
		return nil, err
	}
	pkField := child.PrimaryKey()
	if pkField == nil {
		return nil, fmt.Errorf("pgxstore: select from %s: model has no primary key", child.TableName())
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		pkField.ColumnName(), child.TableName(), fk.ColumnName())

	rows, err := handle.Query(ctx, query, parentKey)
	if err != nil {
		return nil, fmt.Errorf("pgxstore: select from %s: %w", child.TableName(), err)
	}
	defer rows.Close()

	var keys []any
	for rows.Next() {
		var key any
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("pgxstore: select from %s: %w", child.TableName(), err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgxstore: select from %s: %w", child.TableName(), err)
	}
	return keys, nil
}

func unwrap(tx persist.Tx) (pgx.Tx, error) {
	wrapped, ok := tx.(*pgxTx)
	if !ok {
		return nil, errors.New("pgxstore: transaction was not created by this store")
	}
	return wrapped.tx, nil
}

func orderedColumns(model *modelschema.Model, values map[string]any) ([]string, []any, error) {
	seen := make(map[string]struct{}, len(values))
	var columns []string
	var args []any
	for _, field := range model.Fields {
		value, ok := values[field.Name]
		if !ok {
			continue
		}
		seen[field.Name] = struct{}{}
		columns = append(columns, field.ColumnName())
		args = append(args, value)
	}
	for name := range values {
		if _, ok := seen[name]; !ok {
			return nil, nil, fmt.Errorf("pgxstore: model %s has no field %q", model.Name, name)
		}
	}
	return columns, args, nil
}
