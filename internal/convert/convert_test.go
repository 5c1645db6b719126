package convert

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/mocks"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/storage"
)

// pngFixture encodes a small solid-color image for use as pipeline input.
func pngFixture(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageConverterToJPEG(t *testing.T) {
	conv := NewImageConverter()

	out, err := conv.Convert(context.Background(), pngFixture(t), Options{Format: "jpeg", Quality: 80})
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestImageConverterMalformedInput(t *testing.T) {
	conv := NewImageConverter()

	_, err := conv.Convert(context.Background(), []byte("not an image"), Options{Format: "jpeg"})
	assert.ErrorIs(t, err, ErrConversion)
}

func TestImageConverterUnsupportedFormat(t *testing.T) {
	conv := NewImageConverter()

	_, err := conv.Convert(context.Background(), pngFixture(t), Options{Format: "webp"})
	assert.ErrorIs(t, err, ErrConversion)
}

// memStore is an in-memory storage.Store for pipeline tests.
type memStore struct {
	objects  map[string][]byte
	writeErr error
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Read(ctx context.Context, path string) ([]byte, error) {
	data, ok := m.objects[path]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (m *memStore) Write(ctx context.Context, path string, data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.objects[path] = data
	return nil
}

func (m *memStore) Exists(ctx context.Context, path string) (bool, error) {
	_, ok := m.objects[path]
	return ok, nil
}

func (m *memStore) List(ctx context.Context, prefix string) ([]string, error) {
	var paths []string
	for p := range m.objects {
		paths = append(paths, p)
	}
	return paths, nil
}

func newTestPipeline(store storage.Store) *Pipeline {
	return NewPipeline(store, NewImageConverter(), Options{Format: "jpeg", Quality: 80},
		mocks.NoopLogger{}, mocks.NoopMetrics{})
}

func TestPipelineRun(t *testing.T) {
	store := newMemStore()
	store.objects["in/a.png"] = pngFixture(t)

	p := newTestPipeline(store)

	n, err := p.Run(context.Background(), "in/a.png", "out/a.jpg")
	require.NoError(t, err)
	assert.Greater(t, n, int64(0))

	written, ok := store.objects["out/a.jpg"]
	require.True(t, ok)
	assert.Equal(t, int64(len(written)), n)
}

func TestPipelineStageClassification(t *testing.T) {
	t.Run("read failure", func(t *testing.T) {
		p := newTestPipeline(newMemStore())

		_, err := p.Run(context.Background(), "missing.png", "out.jpg")
		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, StageRead, stageErr.Stage)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("convert failure", func(t *testing.T) {
		store := newMemStore()
		store.objects["bad.png"] = []byte("garbage")
		p := newTestPipeline(store)

		_, err := p.Run(context.Background(), "bad.png", "out.jpg")
		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, StageConvert, stageErr.Stage)
		assert.ErrorIs(t, err, ErrConversion)
	})

	t.Run("write failure", func(t *testing.T) {
		store := newMemStore()
		store.objects["in.png"] = pngFixture(t)
		store.writeErr = errors.New("disk full")
		p := newTestPipeline(store)

		_, err := p.Run(context.Background(), "in.png", "out.jpg")
		var stageErr *StageError
		require.ErrorAs(t, err, &stageErr)
		assert.Equal(t, StageWrite, stageErr.Stage)
	})
}
