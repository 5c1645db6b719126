package bench

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/mocks"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/task"
)

type fixedStrategy struct {
	name    string
	results []task.Result
	delay   time.Duration
}

func (s fixedStrategy) Name() string { return s.name }

func (s fixedStrategy) RunTasks(ctx context.Context, tasks []task.Task) []task.Result {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.results
}

type listStore struct {
	paths []string
}

func (s listStore) Read(ctx context.Context, path string) ([]byte, error)     { return nil, nil }
func (s listStore) Write(ctx context.Context, path string, data []byte) error { return nil }
func (s listStore) Exists(ctx context.Context, path string) (bool, error)     { return true, nil }
func (s listStore) List(ctx context.Context, prefix string) ([]string, error) { return s.paths, nil }

func TestRunnerSummarizesBatch(t *testing.T) {
	tasks := []task.Task{
		task.New("/in/a.heic", "/out/a.jpeg"),
		task.New("/in/b.heic", "/out/b.jpeg"),
		task.New("/in/c.heic", "/out/c.jpeg"),
	}
	strategy := fixedStrategy{
		name:  "persistent-sequential",
		delay: 10 * time.Millisecond,
		results: []task.Result{
			task.NewSuccess(tasks[0].ID, "/out/a.jpeg", 100),
			task.NewFailure(tasks[1].ID, task.CodeRead, "missing"),
			task.NewSuccess(tasks[2].ID, "/out/c.jpeg", 250),
		},
	}
	r := NewRunner(mocks.NoopLogger{}, mocks.NoopMetrics{})

	report, results := r.Run(context.Background(), strategy, tasks)

	require.Len(t, results, 3)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "persistent-sequential", report.Strategy)
	assert.Equal(t, 3, report.TaskCount)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, int64(350), report.BytesWritten)
	assert.GreaterOrEqual(t, report.Elapsed, 10*time.Millisecond)
	assert.False(t, report.StartedAt.IsZero())
}

func TestRunnerDistinctRunIDs(t *testing.T) {
	r := NewRunner(mocks.NoopLogger{}, mocks.NoopMetrics{})
	strategy := fixedStrategy{name: "inprocess-sequential"}

	first, _ := r.Run(context.Background(), strategy, nil)
	second, _ := r.Run(context.Background(), strategy, nil)

	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestBuildTasks(t *testing.T) {
	store := listStore{paths: []string{
		"corpus/photo-1.heic",
		"corpus/photo-2.HEIC",
		"corpus/nested/photo-3.heic",
	}}

	tasks, err := BuildTasks(context.Background(), store, "corpus", "converted", "jpeg")
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, "corpus/photo-1.heic", tasks[0].InputPath)
	assert.Equal(t, "converted/photo-1.jpeg", tasks[0].OutputPath)
	assert.Equal(t, "converted/photo-2.jpeg", tasks[1].OutputPath)
	assert.Equal(t, "converted/photo-3.jpeg", tasks[2].OutputPath)

	for _, tk := range tasks {
		assert.NotEmpty(t, tk.ID)
	}
}
