// Package types defines the contracts for structured logging and metrics
// collection used across the conversion harness.
//
// The package follows a provider pattern: core code depends on these
// interfaces, concrete adapters (JSON logger, Prometheus metrics) live in
// sibling packages.
package types

import (
	"context"
	"io"
)

// Logger defines the contract for structured logging.
// Implementations emit JSON-formatted output suitable for log aggregation.
// All methods are context-aware to support request tracing and correlation.
type Logger interface {
	// Info logs an informational message.
	Info(ctx context.Context, msg string, fields Fields)

	// Error logs an error message with the associated error.
	Error(ctx context.Context, msg string, err error, fields Fields)

	// Warn logs a potentially harmful situation that does not prevent
	// operation.
	Warn(ctx context.Context, msg string, fields Fields)

	// Debug logs detailed information useful during development.
	// Typically filtered out in production.
	Debug(ctx context.Context, msg string, fields Fields)

	// WithFields returns a new Logger that includes the given fields in
	// all subsequent log entries. Useful for adding consistent context
	// like task IDs or worker IDs.
	WithFields(fields Fields) Logger
}

// Metrics defines the contract for metrics collection.
// Implementations should provide Prometheus-compatible metrics following
// Prometheus naming conventions.
type Metrics interface {
	// RecordSuccess increments the success counter for an operation type
	// (e.g. "dispatch", "convert").
	RecordSuccess(operationType string)

	// RecordError increments the error counter for an operation and error
	// type (e.g. "dispatch" / "timeout").
	RecordError(operationType string, errorType string)

	// RecordDuration records the duration of an operation in seconds.
	// Use time.Since(start).Seconds().
	RecordDuration(operation string, duration float64)

	// RecordFileSize records the size of a processed file in bytes.
	RecordFileSize(fileType string, bytes int64)

	// StartOperation increments the in-progress gauge for an operation.
	// Must be paired with EndOperation.
	StartOperation(operation string)

	// EndOperation decrements the in-progress gauge for an operation.
	// Call in a defer so it runs even on errors.
	EndOperation(operation string)
}

// Fields represents structured logging fields as key-value pairs.
// Values must be JSON-serializable.
type Fields map[string]interface{}

// Config holds observability configuration for the provider.
type Config struct {
	// ServiceName identifies the service in logs and metrics.
	ServiceName string

	// Environment is the deployment environment ("development",
	// "staging", "production").
	Environment string

	// LogLevel sets the minimum log level: "debug", "info", "warn",
	// "error". Messages below this level are filtered out.
	LogLevel string

	// LogOutput is where logs are written. Defaults to os.Stdout when nil.
	LogOutput io.Writer

	// AdditionalFields are included in every log entry from this
	// provider. Use for global context like version or region.
	AdditionalFields Fields
}

// Provider manages the lifecycle of observability components. It acts as a
// factory for Logger and Metrics instances; repeated calls with the same
// component name return the same instance.
type Provider interface {
	// Logger returns a Logger configured for the named component.
	Logger(component string) Logger

	// Metrics returns a Metrics collector configured for the named
	// component.
	Metrics(component string) Metrics

	// Close shuts down the provider and releases all resources.
	Close() error
}
