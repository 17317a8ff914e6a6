// Package service contains the application use cases. It applies the
// ownership and publishing rules, runs multi-store writes in transactions and
// feeds list requests through the query pipeline.
//
// Services depend on the store interfaces and on small interfaces for the
// auth primitives and the geocoder, never on a concrete infrastructure type.
package service
