// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver.
//
// List queries are built with squirrel from the query.Filter AST: each
// store declares a schema mapping API field names to columns, which decides
// how filter values are coerced, which columns a select list reads and
// which fields may be sorted on. The schema itself is managed by the goose
// migrations embedded in this package.
package postgres
