// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured
// logging with configurable level and output format, and carries loggers
// through context.Context so that stores and services log with request-scoped
// attributes.
package logger
