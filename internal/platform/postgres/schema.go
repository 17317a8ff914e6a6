package postgres

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/devcamper-api/internal/query"
	"github.com/phrazzld/devcamper-api/internal/store"
)

// fieldKind selects how filter values are coerced and rows are scanned.
type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindInt
	kindBool
	kindTime
	kindUUID
	kindTextArray
)

// column maps one API field to a table column.
type column[T any] struct {
	field string // API name, dotted for nested fields ("location.city")
	name  string // SQL column
	kind  fieldKind
	ref   func(*T) any // scan destination inside the entity
}

func col[T any](field, name string, kind fieldKind, ref func(*T) any) column[T] {
	return column[T]{field: field, name: name, kind: kind, ref: ref}
}

// schema describes how an entity is stored and which of its fields the
// query pipeline may filter, sort and project on.
type schema[T any] struct {
	table   string
	columns []column[T]
	byField map[string]column[T]
}

func newSchema[T any](table string, columns ...column[T]) *schema[T] {
	s := &schema[T]{table: table, columns: columns, byField: make(map[string]column[T], len(columns))}
	for _, c := range columns {
		s.byField[c.field] = c
	}
	return s
}

// resolve returns the columns addressed by an API field. A parent field
// such as "location" addresses every nested column beneath it.
func (s *schema[T]) resolve(field string) []column[T] {
	if c, ok := s.byField[field]; ok {
		return []column[T]{c}
	}
	var out []column[T]
	prefix := field + "."
	for _, c := range s.columns {
		if strings.HasPrefix(c.field, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// projection returns the columns to read for a select list. The id column
// is always included; unknown fields are ignored. An empty list selects all.
func (s *schema[T]) projection(fields []string) []column[T] {
	if len(fields) == 0 {
		return s.columns
	}
	want := map[string]bool{query.IDField: true}
	for _, f := range fields {
		for _, c := range s.resolve(f) {
			want[c.field] = true
		}
	}
	out := make([]column[T], 0, len(want))
	for _, c := range s.columns {
		if want[c.field] {
			out = append(out, c)
		}
	}
	return out
}

// columnNames renders columns for a SELECT list.
func columnNames[T any](cols []column[T]) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

// where translates a filter into squirrel predicates. Conditions on unknown
// fields are ignored; values that do not fit their column return
// store.ErrInvalidFilter.
func (s *schema[T]) where(f query.Filter) (sq.And, error) {
	preds := sq.And{}
	for _, cond := range f.Conditions {
		c, ok := s.byField[cond.Field()]
		if !ok {
			continue
		}
		pred, err := predicate(c.name, c.kind, cond)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

// orderBy translates sort fields. Unknown fields are skipped; the id column
// is appended as a final tie-breaker so paging is stable.
func (s *schema[T]) orderBy(fields []query.SortField) []string {
	var out []string
	for _, sf := range fields {
		c, ok := s.byField[sf.Field]
		if !ok || c.kind == kindTextArray {
			continue
		}
		dir := "ASC"
		if sf.Descending {
			dir = "DESC"
		}
		out = append(out, c.name+" "+dir)
	}
	if len(out) == 0 {
		out = append(out, "created_at DESC")
	}
	return append(out, "id ASC")
}

func predicate(name string, kind fieldKind, cond query.Condition) (sq.Sqlizer, error) {
	if kind == kindTextArray {
		return arrayPredicate(name, cond)
	}

	if cond.Op == query.OpIn {
		values := make([]any, 0, len(cond.Values))
		for _, raw := range cond.Values {
			v, err := coerce(kind, raw)
			if err != nil {
				return nil, invalidFilter(cond, err)
			}
			values = append(values, v)
		}
		return sq.Eq{name: values}, nil
	}

	if kind == kindBool && cond.Op != query.OpEq {
		return nil, invalidFilter(cond, fmt.Errorf("operator %s not supported", cond.Op))
	}
	v, err := coerce(kind, cond.Value())
	if err != nil {
		return nil, invalidFilter(cond, err)
	}

	switch cond.Op {
	case query.OpGt:
		return sq.Gt{name: v}, nil
	case query.OpGte:
		return sq.GtOrEq{name: v}, nil
	case query.OpLt:
		return sq.Lt{name: v}, nil
	case query.OpLte:
		return sq.LtOrEq{name: v}, nil
	default:
		return sq.Eq{name: v}, nil
	}
}

// arrayPredicate matches text array columns: eq tests membership, in tests overlap.
func arrayPredicate(name string, cond query.Condition) (sq.Sqlizer, error) {
	switch cond.Op {
	case query.OpEq:
		return sq.Expr("? = ANY("+name+")", cond.Value()), nil
	case query.OpIn:
		return sq.Expr(name+" && ?", cond.Values), nil
	default:
		return nil, invalidFilter(cond, fmt.Errorf("operator %s not supported on lists", cond.Op))
	}
}

func coerce(kind fieldKind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case kindNumber:
		return strconv.ParseFloat(raw, 64)
	case kindInt:
		return strconv.Atoi(raw)
	case kindBool:
		return strconv.ParseBool(raw)
	case kindTime:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		return time.Parse(time.DateOnly, raw)
	case kindUUID:
		return uuid.Parse(raw)
	default:
		return raw, nil
	}
}

func invalidFilter(cond query.Condition, err error) error {
	return fmt.Errorf("%w: %s: %v", store.ErrInvalidFilter, cond.Field(), err)
}
