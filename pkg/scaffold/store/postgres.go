package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toyz/scaffold/pkg/scaffold/model"
)

// uniqueViolation is the SQLSTATE of a unique constraint violation
const uniqueViolation = "23505"

// DB is the subset of *pgxpool.Pool the store needs
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ DB = (*pgxpool.Pool)(nil)

// Statements holds the SQL generated for one CRUD type
type Statements struct {
	List         string
	Find         string
	Insert       string
	InsertNoKey  string
	Update       string
	Delete       string
	columns      []model.PropertyMeta
	valueColumns []model.PropertyMeta
}

// BuildStatements generates SQL for table from the schema of d. Columns are
// listed in declaration order; the key column is used in WHERE clauses.
func BuildStatements(d *model.Descriptor, table string) Statements {
	props := d.Model().Properties()
	columns := make([]model.PropertyMeta, len(props))
	for _, p := range props {
		columns[p.Index] = p
	}

	var valueColumns []model.PropertyMeta
	for _, c := range columns {
		if c.Name != d.Key().Name {
			valueColumns = append(valueColumns, c)
		}
	}

	tbl := pgx.Identifier{table}.Sanitize()
	key := pgx.Identifier{d.Key().Column}.Sanitize()
	all := columnList(columns)
	values := columnList(valueColumns)

	sets := make([]string, len(valueColumns))
	for i, c := range valueColumns {
		sets[i] = fmt.Sprintf("%s = $%d", pgx.Identifier{c.Column}.Sanitize(), i+1)
	}

	insertNoKey := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		tbl, values, placeholders(len(valueColumns), 1), key)
	update := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		tbl, strings.Join(sets, ", "), key, len(valueColumns)+1)

	return Statements{
		List:         fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", all, tbl, key),
		Find:         fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", all, tbl, key),
		Insert:       fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tbl, all, placeholders(len(columns), 1)),
		InsertNoKey:  insertNoKey,
		Update:       update,
		Delete:       fmt.Sprintf("DELETE FROM %s WHERE %s = $1", tbl, key),
		columns:      columns,
		valueColumns: valueColumns,
	}
}

func columnList(cols []model.PropertyMeta) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = pgx.Identifier{c.Column}.Sanitize()
	}
	return strings.Join(names, ", ")
}

func placeholders(n, from int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ph, ", ")
}

// PostgresOption configures a Postgres store
type PostgresOption func(*postgresOptions)

type postgresOptions struct {
	table string
}

// WithTable overrides the table name (default: lower-cased model name)
func WithTable(table string) PostgresOption {
	return func(o *postgresOptions) { o.table = table }
}

// Postgres is a Repository backed by PostgreSQL through pgx
type Postgres[T any] struct {
	db   DB
	d    *model.Descriptor
	stmt Statements
}

// NewPostgres creates a store for the CRUD type d. d must describe T.
func NewPostgres[T any](db DB, d *model.Descriptor, opts ...PostgresOption) *Postgres[T] {
	o := postgresOptions{table: strings.ToLower(d.Name())}
	for _, opt := range opts {
		opt(&o)
	}
	return &Postgres[T]{db: db, d: d, stmt: BuildStatements(d, o.table)}
}

// Statements returns the generated SQL
func (p *Postgres[T]) Statements() Statements {
	return p.stmt
}

func (p *Postgres[T]) pointers(entity *T, cols []model.PropertyMeta) []any {
	ptrs := make([]any, len(cols))
	for i, c := range cols {
		ptrs[i], _ = p.d.Model().Pointer(entity, c.Name)
	}
	return ptrs
}

func (p *Postgres[T]) values(entity *T, cols []model.PropertyMeta) []any {
	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i], _ = p.d.Model().Value(entity, c.Name)
	}
	return vals
}

// List returns all rows ordered by key
func (p *Postgres[T]) List(ctx context.Context) ([]*T, error) {
	rows, err := p.db.Query(ctx, p.stmt.List)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var items []*T
	for rows.Next() {
		entity := new(T)
		if err := rows.Scan(p.pointers(entity, p.stmt.columns)...); err != nil {
			return nil, err
		}
		items = append(items, entity)
	}
	return items, rows.Err()
}

// Find returns the row with key
func (p *Postgres[T]) Find(ctx context.Context, key any) (*T, error) {
	entity := new(T)
	err := p.db.QueryRow(ctx, p.stmt.Find, key).Scan(p.pointers(entity, p.stmt.columns)...)
	if err != nil {
		return nil, mapError(err)
	}
	return entity, nil
}

// Insert stores entity. Zero integer keys are generated by the database.
func (p *Postgres[T]) Insert(ctx context.Context, entity *T) error {
	keyPtr, ok := p.d.Model().Pointer(entity, p.d.Key().Name)
	if !ok {
		return fmt.Errorf("%s: entity has no key", p.d.Name())
	}

	if isGeneratedInteger(keyPtr) {
		err := p.db.QueryRow(ctx, p.stmt.InsertNoKey, p.values(entity, p.stmt.valueColumns)...).Scan(keyPtr)
		return mapError(err)
	}

	if _, err := assignKey(keyPtr, func() int64 { return 0 }); err != nil {
		return err
	}
	_, err := p.db.Exec(ctx, p.stmt.Insert, p.values(entity, p.stmt.columns)...)
	return mapError(err)
}

// Update writes entity. No affected row means the row was removed concurrently.
func (p *Postgres[T]) Update(ctx context.Context, entity *T) error {
	key, ok := p.d.KeyOf(entity)
	if !ok {
		return fmt.Errorf("%s: entity has no key", p.d.Name())
	}
	args := append(p.values(entity, p.stmt.valueColumns), key)

	tag, err := p.db.Exec(ctx, p.stmt.Update, args...)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// Delete removes the row with key
func (p *Postgres[T]) Delete(ctx context.Context, key any) error {
	tag, err := p.db.Exec(ctx, p.stmt.Delete, key)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}
