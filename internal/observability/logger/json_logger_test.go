package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
)

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"nonsense", InfoLevel},
		{"", InfoLevel},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseLevel(tc.input))
	}
}

func TestJSONLoggerWritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	l := New("heic-bench", "test", "info", &buf, nil)

	l.Info(context.Background(), "Batch started", types.Fields{"task_count": 3})

	entry := lastEntry(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "heic-bench", entry["service"])
	assert.Equal(t, "test", entry["environment"])
	assert.Equal(t, "Batch started", entry["message"])
	assert.Equal(t, float64(3), entry["task_count"])
	assert.NotEmpty(t, entry["timestamp"])
	assert.NotEmpty(t, entry["hostname"])
}

func TestJSONLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("heic-bench", "test", "warn", &buf, nil)

	l.Debug(context.Background(), "ignored", nil)
	l.Info(context.Background(), "ignored", nil)
	assert.Zero(t, buf.Len())

	l.Warn(context.Background(), "kept", nil)
	assert.NotZero(t, buf.Len())
}

func TestJSONLoggerIncludesError(t *testing.T) {
	var buf bytes.Buffer
	l := New("heic-bench", "test", "info", &buf, nil)

	l.Error(context.Background(), "Write failed", errors.New("disk full"), nil)

	entry := lastEntry(t, &buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "disk full", entry["error"])
}

func TestJSONLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	base := New("heic-bench", "test", "info", &buf, types.Fields{"component": "pool"})

	scoped := base.WithFields(types.Fields{"strategy": "persistent-sequential"})
	scoped.Info(context.Background(), "run", nil)

	entry := lastEntry(t, &buf)
	assert.Equal(t, "pool", entry["component"])
	assert.Equal(t, "persistent-sequential", entry["strategy"])

	// The base logger is unchanged.
	buf.Reset()
	base.Info(context.Background(), "run", nil)
	entry = lastEntry(t, &buf)
	assert.NotContains(t, entry, "strategy")
}
