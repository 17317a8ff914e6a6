// Package query implements the list pipeline shared by every collection
// endpoint: raw query parameters are partitioned into a filter and control
// options, the filter is parsed into a typed AST, and a Repository is asked
// for one page of results plus a total used to build pagination links.
//
// The package knows nothing about SQL. Repositories translate the Filter
// AST into their engine's native operators.
package query
