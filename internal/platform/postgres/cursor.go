package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/phrazzld/devcamper-api/internal/query"
	"github.com/phrazzld/devcamper-api/internal/store"
)

// psql builds PostgreSQL statements with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// cursor is a lazy list query over one table. It implements query.Cursor.
type cursor[T any] struct {
	db     store.DBTX
	schema *schema[T]
	filter query.Filter
	fields []string
	sort   []query.SortField
	skip   int
	limit  int
}

func newCursor[T any](db store.DBTX, s *schema[T], f query.Filter) *cursor[T] {
	return &cursor[T]{db: db, schema: s, filter: f}
}

func (c *cursor[T]) Select(fields ...string) query.Cursor[*T] {
	c.fields = fields
	return c
}

func (c *cursor[T]) Sort(fields ...query.SortField) query.Cursor[*T] {
	c.sort = fields
	return c
}

func (c *cursor[T]) Skip(n int) query.Cursor[*T] {
	c.skip = n
	return c
}

func (c *cursor[T]) Limit(n int) query.Cursor[*T] {
	c.limit = n
	return c
}

// build renders the SELECT statement and the columns it reads.
func (c *cursor[T]) build() (string, []any, []column[T], error) {
	cols := c.schema.projection(c.fields)
	where, err := c.schema.where(c.filter)
	if err != nil {
		return "", nil, nil, err
	}

	b := psql.Select(columnNames(cols)...).From(c.schema.table)
	if len(where) > 0 {
		b = b.Where(where)
	}
	b = b.OrderBy(c.schema.orderBy(c.sort)...)
	if c.skip > 0 {
		b = b.Offset(uint64(c.skip))
	}
	if c.limit > 0 {
		b = b.Limit(uint64(c.limit))
	}

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to build %s query: %w", c.schema.table, err)
	}
	return sqlStr, args, cols, nil
}

// All runs the query and scans every row.
func (c *cursor[T]) All(ctx context.Context) ([]*T, error) {
	sqlStr, args, cols, err := c.build()
	if err != nil {
		return nil, err
	}
	return queryRows(ctx, c.db, sqlStr, args, cols)
}

// queryRows runs a SELECT whose columns match cols and scans each row into a new T.
func queryRows[T any](ctx context.Context, db store.DBTX, sqlStr string, args []any, cols []column[T]) ([]*T, error) {
	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	types := pgtype.NewMap()
	items := []*T{}
	for rows.Next() {
		item := new(T)
		if err := rows.Scan(scanTargets(types, item, cols)...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return items, nil
}

// scanTargets returns the scan destinations of cols inside item.
func scanTargets[T any](types *pgtype.Map, item *T, cols []column[T]) []any {
	targets := make([]any, len(cols))
	for i, c := range cols {
		targets[i] = c.ref(item)
		if c.kind == kindTextArray {
			targets[i] = types.SQLScanner(targets[i])
		}
	}
	return targets
}

// count runs SELECT COUNT(*) over the rows matching f.
func count[T any](ctx context.Context, db store.DBTX, s *schema[T], f query.Filter) (int, error) {
	where, err := s.where(f)
	if err != nil {
		return 0, err
	}
	b := psql.Select("COUNT(*)").From(s.table)
	if len(where) > 0 {
		b = b.Where(where)
	}
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build %s count: %w", s.table, err)
	}

	var n int
	if err := db.QueryRowContext(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, MapError(err)
	}
	return n, nil
}
