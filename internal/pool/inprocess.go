package pool

import (
	"context"
	"sync"
	"time"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/task"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/worker"
)

// InProcessSequential runs each conversion directly in the calling
// goroutine, one task at a time. No worker lifecycle applies: it is the
// dispatcher degenerated to a direct call.
type InProcessSequential struct {
	exec worker.Executor
}

// NewInProcessSequential builds the strategy.
func NewInProcessSequential(deps Deps) *InProcessSequential {
	return &InProcessSequential{exec: deps.Exec}
}

// Name identifies the strategy.
func (s *InProcessSequential) Name() string { return "inprocess-sequential" }

// RunTasks converts the batch one task at a time.
func (s *InProcessSequential) RunTasks(ctx context.Context, tasks []task.Task) []task.Result {
	results := make([]task.Result, 0, len(tasks))
	for _, t := range tasks {
		results = append(results, runDirect(ctx, s.exec, t))
	}
	return results
}

// InProcessParallel launches every conversion immediately in its own
// goroutine and joins all outcomes.
type InProcessParallel struct {
	exec worker.Executor
}

// NewInProcessParallel builds the strategy.
func NewInProcessParallel(deps Deps) *InProcessParallel {
	return &InProcessParallel{exec: deps.Exec}
}

// Name identifies the strategy.
func (s *InProcessParallel) Name() string { return "inprocess-parallel" }

// RunTasks converts all tasks concurrently and returns results in input
// order.
func (s *InProcessParallel) RunTasks(ctx context.Context, tasks []task.Task) []task.Result {
	results := make([]task.Result, len(tasks))

	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task.Task) {
			defer wg.Done()
			results[i] = runDirect(ctx, s.exec, t)
		}(i, t)
	}
	wg.Wait()

	return results
}

// runDirect executes one task in the calling context and classifies the
// outcome the same way a worker would.
func runDirect(ctx context.Context, exec worker.Executor, t task.Task) task.Result {
	start := time.Now()

	bytes, err := exec.Run(ctx, t.InputPath, t.OutputPath)

	var res task.Result
	if err != nil {
		res = task.NewFailure(t.ID, worker.Classify(err), err.Error())
	} else {
		res = task.NewSuccess(t.ID, t.OutputPath, bytes)
	}
	res.Duration = time.Since(start)

	return res
}
