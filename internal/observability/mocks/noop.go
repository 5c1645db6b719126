// Package mocks provides test doubles for the observability interfaces.
package mocks

import (
	"context"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
)

// NoopLogger discards all log entries. Use in tests where log output is not
// under assertion.
type NoopLogger struct{}

func (NoopLogger) Info(ctx context.Context, msg string, fields types.Fields)             {}
func (NoopLogger) Error(ctx context.Context, msg string, err error, fields types.Fields) {}
func (NoopLogger) Warn(ctx context.Context, msg string, fields types.Fields)             {}
func (NoopLogger) Debug(ctx context.Context, msg string, fields types.Fields)            {}
func (n NoopLogger) WithFields(fields types.Fields) types.Logger                         { return n }

// NoopMetrics discards all measurements.
type NoopMetrics struct{}

func (NoopMetrics) RecordSuccess(operationType string)                 {}
func (NoopMetrics) RecordError(operationType string, errorType string) {}
func (NoopMetrics) RecordDuration(operation string, duration float64)  {}
func (NoopMetrics) RecordFileSize(fileType string, bytes int64)        {}
func (NoopMetrics) StartOperation(operation string)                    {}
func (NoopMetrics) EndOperation(operation string)                      {}

// NoopProvider hands out no-op loggers and metrics. It avoids the duplicate
// Prometheus registration panic that the real provider would hit when tests
// construct multiple providers for the same component.
type NoopProvider struct{}

func (NoopProvider) Logger(component string) types.Logger   { return NoopLogger{} }
func (NoopProvider) Metrics(component string) types.Metrics { return NoopMetrics{} }
func (NoopProvider) Close() error                           { return nil }

// NewNoopProvider returns a Provider suitable for tests.
func NewNoopProvider() types.Provider { return NoopProvider{} }
