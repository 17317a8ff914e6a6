// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Attributes that carry credentials (passwords, tokens,
// cookies, authorization headers) are masked before they reach the output.
package logger
