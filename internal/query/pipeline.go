package query

import (
	"context"
	"fmt"
)

// PageRef points to a neighbouring page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination holds the links to the neighbouring pages, when they exist.
type Pagination struct {
	Prev *PageRef `json:"prev,omitempty"`
	Next *PageRef `json:"next,omitempty"`
}

// PageResult is one page of a list query.
type PageResult[T any] struct {
	Items         []T
	Count         int
	Pagination    Pagination
	TotalMatching int
	Options       Options
}

// Pipeline configures how list requests are executed. The zero value uses
// filtered counts, page-1 previous links and no limit cap.
type Pipeline struct {
	// MaxLimit caps the page size; 0 means uncapped.
	MaxLimit int
	// LegacyPrevPage links "prev" to page+1, as the first API release did.
	LegacyPrevPage bool
	// UnfilteredCount computes TotalMatching over the whole collection.
	UnfilteredCount bool
}

// Options parses the control parameters of raw, applying the limit cap.
func (p Pipeline) Options(raw map[string]string) Options {
	opts := ParseOptions(raw)
	if p.MaxLimit > 0 && opts.Limit > p.MaxLimit {
		opts.Limit = p.MaxLimit
	}
	return opts
}

// Paginate builds the pagination links for a page given the total count.
func (p Pipeline) Paginate(opts Options, total int) Pagination {
	var pg Pagination
	if opts.EndIndex() < total {
		pg.Next = &PageRef{Page: opts.Page + 1, Limit: opts.Limit}
	}
	if opts.StartIndex() > 0 {
		prev := opts.Page - 1
		if p.LegacyPrevPage {
			prev = opts.Page + 1
		}
		pg.Prev = &PageRef{Page: prev, Limit: opts.Limit}
	}
	return pg
}

// Execute runs a list request against repo. It performs exactly two reads,
// a count and a fetch. Repository errors are wrapped and returned.
func Execute[T any](ctx context.Context, p Pipeline, raw map[string]string, repo Repository[T]) (*PageResult[T], error) {
	spec, _ := Partition(raw)
	opts := p.Options(raw)
	filter := ParseFilter(spec)

	countFilter := filter
	if p.UnfilteredCount {
		countFilter = Filter{}
	}
	total, err := repo.Count(ctx, countFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	cursor := repo.Find(filter)
	if len(opts.Select) > 0 {
		cursor = cursor.Select(opts.Select...)
	}
	items, err := cursor.
		Sort(opts.Sort...).
		Skip(opts.Skip()).
		Limit(opts.Limit).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	if items == nil {
		items = []T{}
	}

	return &PageResult[T]{
		Items:         items,
		Count:         len(items),
		Pagination:    p.Paginate(opts, total),
		TotalMatching: total,
		Options:       opts,
	}, nil
}
