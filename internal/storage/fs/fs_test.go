package fs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/mocks"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), mocks.NoopLogger{}, mocks.NoopMetrics{})
	require.NoError(t, err)
	return s
}

func TestWriteRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "nested/dir/a.jpg", []byte("payload")))

	data, err := s.Read(ctx, "nested/dir/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestReadNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Read(context.Background(), "missing.heic")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	exists, err := s.Exists(ctx, "a.heic")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Write(ctx, "a.heic", []byte("x")))

	exists, err = s.Exists(ctx, "a.heic")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "in/a.heic", []byte("a")))
	require.NoError(t, s.Write(ctx, "in/b.heic", []byte("b")))
	require.NoError(t, s.Write(ctx, "out/a.jpg", []byte("c")))

	paths, err := s.List(ctx, "in")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"in/a.heic", "in/b.heic"}, paths)

	empty, err := s.List(ctx, "nowhere")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
