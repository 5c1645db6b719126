package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/mocks"
)

func TestRegistryAwaitsCleanTermination(t *testing.T) {
	r := NewRegistry(mocks.NoopLogger{})

	var workers []*Inproc
	for i := 0; i < 3; i++ {
		w := StartInproc(context.Background(), &fakeExec{bytes: 1}, mocks.NoopLogger{})
		r.Track(w)
		workers = append(workers, w)
	}
	assert.Equal(t, 3, r.Spawned())

	for _, w := range workers {
		require.NoError(t, w.Shutdown(context.Background()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, r.AwaitTermination(ctx))
}

func TestRegistryKillsStragglers(t *testing.T) {
	r := NewRegistry(mocks.NoopLogger{})

	w := StartInproc(context.Background(), &fakeExec{blockOn: true}, mocks.NoopLogger{})
	r.Track(w)
	require.NoError(t, w.Submit(taskRequest("/in/a.heic", "/out/a.jpeg")))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := r.AwaitTermination(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateTerminated, w.State())
}

func TestRegistrySpawnedSurvivesReset(t *testing.T) {
	r := NewRegistry(mocks.NoopLogger{})

	w := StartInproc(context.Background(), &fakeExec{bytes: 1}, mocks.NoopLogger{})
	r.Track(w)
	require.NoError(t, w.Shutdown(context.Background()))
	require.NoError(t, r.AwaitTermination(context.Background()))

	// The spawn count is the batch's lifetime total, not the live set.
	assert.Equal(t, 1, r.Spawned())
}
