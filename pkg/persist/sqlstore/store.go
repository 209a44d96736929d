// Package sqlstore implements persist.Store over database/sql. It speaks the
// postgres, mysql, and sqlite placeholder dialects; the caller supplies the
// driver (lib/pq, go-sql-driver/mysql, modernc.org/sqlite).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-modelform/pkg/modelschema"
	"github.com/goliatone/go-modelform/pkg/persist"
)

// Supported dialect names.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// Store is a database/sql-backed persist.Store.
type Store struct {
	db      *sql.DB
	dialect string
}

// Open wraps sql.Open with a dialect-aware Store.
func Open(dialect, dsn string) (*Store, error) {
	db, err := sql.Open(driverName(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", dialect, err)
	}
	return OpenDB(dialect, db), nil
}

// OpenDB wraps an existing *sql.DB.
func OpenDB(dialect string, db *sql.DB) *Store {
	return &Store{db: db, dialect: normalizeDialect(dialect)}
}

// Dialect reports the normalized dialect name.
func (s *Store) Dialect() string { return s.dialect }

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying handle.
func (s *Store) Close() error { return s.db.Close() }

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t *sqlTx) Rollback(context.Context) error { return t.tx.Rollback() }

// Begin opens the transaction for one cascade save.
func (s *Store) Begin(ctx context.Context) (persist.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: begin: %w", err)
	}
	return &sqlTx{tx: tx}, nil
}

// Insert writes a new row, generating uuid keys locally and reading
// auto-increment keys back from the database (RETURNING on postgres,
// LastInsertId elsewhere).
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
		return nil, fmt.Errorf("sqlstore: insert into %s: no values", model.TableName())
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = s.placeholder(i + 1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		model.TableName(), strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if pk == nil {
		if _, err := handle.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("sqlstore: insert into %s: %w", model.TableName(), err)
		}
		return nil, nil
	}

	if provided := row[pk.Name]; provided != nil {
		if _, err := handle.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("sqlstore: insert into %s: %w", model.TableName(), err)
		}
		return provided, nil
	}

	if s.dialect == Postgres {
		query += " RETURNING " + pk.ColumnName()
		var generated any
		if err := handle.QueryRowContext(ctx, query, args...).Scan(&generated); err != nil {
			return nil, fmt.Errorf("sqlstore: insert into %s: %w", model.TableName(), err)
		}
		return generated, nil
	}

	result, err := handle.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: insert into %s: %w", model.TableName(), err)
	}
	generated, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: insert into %s: read key: %w", model.TableName(), err)
	}
	return generated, nil
}

// Update rewrites the named columns of one row.
func (s *Store) Update(ctx context.Context, tx persist.Tx, model *modelschema.Model, pk any, values map[string]any) error {
	handle, err := unwrap(tx)
	if err != nil {
		return err
	}
	pkField := model.PrimaryKey()
	if pkField == nil {
		return fmt.Errorf("sqlstore: update %s: model has no primary key", model.TableName())
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
		assignments[i] = column + " = " + s.placeholder(i+1)
	}
	args = append(args, pk)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		model.TableName(), strings.Join(assignments, ", "),
		pkField.ColumnName(), s.placeholder(len(columns)+1))

	if _, err := handle.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlstore: update %s: %w", model.TableName(), err)
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
		return fmt.Errorf("sqlstore: delete from %s: model has no primary key", model.TableName())
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		model.TableName(), pkField.ColumnName(), s.placeholder(1))
	if _, err := handle.ExecContext(ctx, query, pk); err != nil {
		return fmt.Errorf("sqlstore: delete from %s: %w", model.TableName(), err)
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
		return nil, fmt.Errorf("sqlstore: select from %s: model has no primary key", child.TableName())
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		pkField.ColumnName(), child.TableName(), fk.ColumnName(), s.placeholder(1))

	rows, err := handle.QueryContext(ctx, query, parentKey)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: select from %s: %w", child.TableName(), err)
	}
	defer rows.Close()

	var keys []any
	for rows.Next() {
		var key any
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("sqlstore: select from %s: %w", child.TableName(), err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: select from %s: %w", child.TableName(), err)
	}
	return keys, nil
}

// queryHandle is the subset of *sql.Tx the store needs.
type queryHandle interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func unwrap(tx persist.Tx) (queryHandle, error) {
	wrapped, ok := tx.(*sqlTx)
	if !ok {
		return nil, errors.New("sqlstore: transaction was not created by this store")
	}
	return wrapped.tx, nil
}

// orderedColumns maps field-name values to columns in model declaration
// order, so generated SQL is deterministic.
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
			return nil, nil, fmt.Errorf("sqlstore: model %s has no field %q", model.Name, name)
		}
	}
	return columns, args, nil
}

func (s *Store) placeholder(n int) string {
	if s.dialect == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func normalizeDialect(dialect string) string {
	switch {
	case strings.HasPrefix(dialect, Postgres), strings.HasPrefix(dialect, "pgx"):
		return Postgres
	case strings.HasPrefix(dialect, MySQL):
		return MySQL
	case strings.HasPrefix(dialect, SQLite), strings.HasPrefix(dialect, "sqlite3"):
		return SQLite
	default:
		return dialect
	}
}

func driverName(dialect string) string {
	if normalizeDialect(dialect) == SQLite {
		// modernc.org/sqlite registers as "sqlite".
		return "sqlite"
	}
	return dialect
}
