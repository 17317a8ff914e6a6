// Package api holds the HTTP handlers of the directory. Handlers decode and
// validate requests, delegate to the services in internal/service and map
// their errors to status codes and safe messages. Every response uses the
// {success, data} envelope; list endpoints add count and pagination.
package api
