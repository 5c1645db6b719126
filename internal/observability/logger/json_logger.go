// Package logger provides the structured logging implementation for the
// conversion harness. It outputs JSON-formatted entries with a consistent
// field structure for efficient querying in log aggregation systems.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

// Log level constants ordered by severity.
const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel converts a string representation to a LogLevel.
// Unrecognized levels default to InfoLevel.
func ParseLevel(level string) LogLevel {
	switch level {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// String returns the string representation of a LogLevel.
func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// JSONLogger implements types.Logger with one JSON object per line.
// Each entry carries timestamp, level, service, environment, hostname and
// any persistent fields, merged with per-call fields.
type JSONLogger struct {
	mu               sync.Mutex
	output           io.Writer
	serviceName      string
	environment      string
	hostname         string
	minLevel         LogLevel
	persistentFields types.Fields
}

// New creates a JSONLogger. If output is nil it defaults to os.Stdout.
func New(serviceName, environment, logLevel string, output io.Writer, additionalFields types.Fields) *JSONLogger {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	if output == nil {
		output = os.Stdout
	}

	return &JSONLogger{
		output:           output,
		serviceName:      serviceName,
		environment:      environment,
		hostname:         hostname,
		minLevel:         ParseLevel(logLevel),
		persistentFields: additionalFields,
	}
}

// Info logs an informational message.
func (l *JSONLogger) Info(ctx context.Context, msg string, fields types.Fields) {
	l.log(ctx, InfoLevel, msg, nil, fields)
}

// Error logs an error message with the associated error.
func (l *JSONLogger) Error(ctx context.Context, msg string, err error, fields types.Fields) {
	l.log(ctx, ErrorLevel, msg, err, fields)
}

// Warn logs a warning message.
func (l *JSONLogger) Warn(ctx context.Context, msg string, fields types.Fields) {
	l.log(ctx, WarnLevel, msg, nil, fields)
}

// Debug logs a debug message.
func (l *JSONLogger) Debug(ctx context.Context, msg string, fields types.Fields) {
	l.log(ctx, DebugLevel, msg, nil, fields)
}

// WithFields returns a new logger that includes the given fields in every
// entry. The receiver is not modified.
func (l *JSONLogger) WithFields(fields types.Fields) types.Logger {
	merged := make(types.Fields, len(l.persistentFields)+len(fields))
	for k, v := range l.persistentFields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &JSONLogger{
		output:           l.output,
		serviceName:      l.serviceName,
		environment:      l.environment,
		hostname:         l.hostname,
		minLevel:         l.minLevel,
		persistentFields: merged,
	}
}

func (l *JSONLogger) log(ctx context.Context, level LogLevel, msg string, err error, fields types.Fields) {
	if level < l.minLevel {
		return
	}

	entry := map[string]interface{}{
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
		"level":       level.String(),
		"service":     l.serviceName,
		"environment": l.environment,
		"hostname":    l.hostname,
		"message":     msg,
	}

	for k, v := range l.persistentFields {
		entry[k] = v
	}
	for k, v := range fields {
		entry[k] = v
	}

	if err != nil {
		entry["error"] = err.Error()
	}

	// Context-carried correlation IDs, when present.
	for _, key := range []string{"task_id", "run_id", "worker_id"} {
		if val, ok := ctx.Value(key).(string); ok && val != "" {
			entry[key] = val
		}
	}

	data, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		data = []byte(fmt.Sprintf(`{"level":"error","message":"failed to marshal log entry: %v"}`, marshalErr))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write(append(data, '\n'))
}
