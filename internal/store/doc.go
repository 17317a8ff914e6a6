// Package store defines the persistence contracts of the directory: one
// store per entity, each doubling as a query.Repository so list endpoints
// can run the shared query pipeline against it.
//
// Implementations live in internal/platform/postgres. Stores accept a DBTX
// so the same code runs against a pool or inside a transaction started
// with RunInTransaction.
package store
