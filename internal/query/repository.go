package query

import "context"

// Repository is the data-fetch capability the pipeline runs against.
type Repository[T any] interface {
	// Count returns the number of items matching f.
	Count(ctx context.Context, f Filter) (int, error)
	// Find starts a lazy query; nothing is read until Cursor.All.
	Find(f Filter) Cursor[T]
}

// Cursor accumulates projection, ordering and paging for a Find.
// Each method returns the cursor so calls can be chained.
type Cursor[T any] interface {
	Select(fields ...string) Cursor[T]
	Sort(fields ...SortField) Cursor[T]
	Skip(n int) Cursor[T]
	Limit(n int) Cursor[T]
	All(ctx context.Context) ([]T, error)
}
