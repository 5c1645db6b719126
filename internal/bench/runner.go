// Package bench runs one measured batch of conversion tasks through a pool
// strategy and summarizes the outcome.
package bench

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/pool"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/storage"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/task"
)

// Report summarizes one measured run.
type Report struct {
	// RunID identifies this run in logs, the database and the queue.
	RunID string `json:"run_id"`

	// Strategy is the pool strategy name the run used.
	Strategy string `json:"strategy"`

	// TaskCount is the size of the batch.
	TaskCount int `json:"task_count"`

	// Succeeded and Failed partition the batch.
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	// BytesWritten is the total output size across successful tasks.
	BytesWritten int64 `json:"bytes_written"`

	// Elapsed is the wall-clock duration of the whole batch, measured
	// around RunTasks only. Task setup and teardown outside the strategy
	// are excluded.
	Elapsed time.Duration `json:"elapsed"`

	// StartedAt is when the batch began.
	StartedAt time.Time `json:"started_at"`
}

// Runner measures pool strategies over a fixed batch of tasks.
type Runner struct {
	logger  types.Logger
	metrics types.Metrics
}

// NewRunner creates a benchmark runner.
func NewRunner(logger types.Logger, metrics types.Metrics) *Runner {
	return &Runner{logger: logger, metrics: metrics}
}

// Run executes the batch under the given strategy and returns the report
// together with the per-task results, in task order.
func (r *Runner) Run(ctx context.Context, strategy pool.Strategy, tasks []task.Task) (Report, []task.Result) {
	report := Report{
		RunID:     uuid.New().String(),
		Strategy:  strategy.Name(),
		TaskCount: len(tasks),
		StartedAt: time.Now().UTC(),
	}

	r.logger.Info(ctx, "Benchmark run starting", types.Fields{
		"run_id":     report.RunID,
		"strategy":   report.Strategy,
		"task_count": report.TaskCount,
	})

	start := time.Now()
	results := strategy.RunTasks(ctx, tasks)
	report.Elapsed = time.Since(start)

	for _, res := range results {
		if res.Success {
			report.Succeeded++
			report.BytesWritten += res.Bytes
		} else {
			report.Failed++
		}
	}

	r.metrics.RecordDuration("bench_"+report.Strategy, report.Elapsed.Seconds())
	if report.Failed == 0 {
		r.metrics.RecordSuccess("bench")
	} else {
		r.metrics.RecordError("bench", "partial_failure")
	}

	r.logger.Info(ctx, "Benchmark run finished", types.Fields{
		"run_id":    report.RunID,
		"strategy":  report.Strategy,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"elapsed":   report.Elapsed.String(),
	})

	return report, results
}

// BuildTasks lists the input prefix and pairs every image with an output
// path under outputDir, swapping the extension for the target format. The
// listing order is preserved so runs over the same corpus are comparable.
func BuildTasks(ctx context.Context, store storage.Store, inputDir, outputDir, format string) ([]task.Task, error) {
	paths, err := store.List(ctx, inputDir)
	if err != nil {
		return nil, err
	}

	tasks := make([]task.Task, 0, len(paths))
	for _, p := range paths {
		base := path.Base(p)
		ext := path.Ext(base)
		name := strings.TrimSuffix(base, ext) + "." + format
		tasks = append(tasks, task.New(p, path.Join(outputDir, name)))
	}
	return tasks, nil
}
