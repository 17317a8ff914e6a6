package query

import (
	"context"
	"strconv"
	"strings"
)

type record struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Tuition float64 `json:"tuition"`
	Weeks   int     `json:"weeks"`
}

// fakeRepo is an in-memory Repository that records every call it receives.
type fakeRepo struct {
	items    []record
	countErr error
	findErr  error

	countFilters []Filter
	findFilters  []Filter
	cursors      []*fakeCursor
}

func (r *fakeRepo) Count(_ context.Context, f Filter) (int, error) {
	r.countFilters = append(r.countFilters, f)
	if r.countErr != nil {
		return 0, r.countErr
	}
	n := 0
	for _, item := range r.items {
		if matches(item, f) {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) Find(f Filter) Cursor[record] {
	r.findFilters = append(r.findFilters, f)
	c := &fakeCursor{repo: r, filter: f, limit: -1}
	r.cursors = append(r.cursors, c)
	return c
}

type fakeCursor struct {
	repo   *fakeRepo
	filter Filter
	fields []string
	sort   []SortField
	skip   int
	limit  int
}

func (c *fakeCursor) Select(fields ...string) Cursor[record] { c.fields = fields; return c }
func (c *fakeCursor) Sort(fields ...SortField) Cursor[record] { c.sort = fields; return c }
func (c *fakeCursor) Skip(n int) Cursor[record]               { c.skip = n; return c }
func (c *fakeCursor) Limit(n int) Cursor[record]              { c.limit = n; return c }

func (c *fakeCursor) All(context.Context) ([]record, error) {
	if c.repo.findErr != nil {
		return nil, c.repo.findErr
	}
	var matched []record
	for _, item := range c.repo.items {
		if matches(item, c.filter) {
			matched = append(matched, item)
		}
	}
	if c.skip >= len(matched) {
		return nil, nil
	}
	matched = matched[c.skip:]
	if c.limit >= 0 && c.limit < len(matched) {
		matched = matched[:c.limit]
	}
	return matched, nil
}

func matches(r record, f Filter) bool {
	for _, cond := range f.Conditions {
		switch cond.Field() {
		case "name":
			if !matchText(r.Name, cond) {
				return false
			}
		case "tuition":
			if !matchNumber(r.Tuition, cond) {
				return false
			}
		}
	}
	return true
}

func matchText(v string, cond Condition) bool {
	for _, want := range cond.Values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

func matchNumber(v float64, cond Condition) bool {
	want, err := strconv.ParseFloat(cond.Value(), 64)
	if err != nil {
		return false
	}
	switch cond.Op {
	case OpGt:
		return v > want
	case OpGte:
		return v >= want
	case OpLt:
		return v < want
	case OpLte:
		return v <= want
	default:
		return v == want
	}
}

func records(n int) []record {
	out := make([]record, n)
	for i := range out {
		out[i] = record{
			ID:      strconv.Itoa(i + 1),
			Name:    "bootcamp " + strconv.Itoa(i+1),
			Tuition: float64((i + 1) * 1000),
			Weeks:   8,
		}
	}
	return out
}
