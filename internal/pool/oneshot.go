package pool

import (
	"context"
	"sync"
	"time"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/dispatch"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/task"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/worker"
)

// OneShotSequential spawns a fresh worker for each task, dispatches once,
// and awaits its termination before moving to the next task.
type OneShotSequential struct {
	spawner         worker.Spawner
	disp            *dispatch.Dispatcher
	shutdownTimeout time.Duration
	logger          types.Logger
}

// NewOneShotSequential builds the strategy.
func NewOneShotSequential(deps Deps) *OneShotSequential {
	return &OneShotSequential{
		spawner:         deps.Spawner,
		disp:            deps.Dispatcher,
		shutdownTimeout: deps.ShutdownTimeout,
		logger:          deps.Logger,
	}
}

// Name identifies the strategy.
func (s *OneShotSequential) Name() string { return "oneshot-sequential" }

// RunTasks processes the batch with one short-lived worker per task.
func (s *OneShotSequential) RunTasks(ctx context.Context, tasks []task.Task) []task.Result {
	registry := worker.NewRegistry(s.logger)
	results := make([]task.Result, 0, len(tasks))

	for _, t := range tasks {
		w, err := s.spawner.Spawn(ctx)
		if err != nil {
			results = append(results, task.NewFailure(t.ID, task.CodeWorkerUnavailable, err.Error()))
			continue
		}
		registry.Track(w)

		results = append(results, s.disp.Dispatch(ctx, w, t))

		shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
		w.Shutdown(shutdownCtx)
		cancel()
	}

	awaitCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	registry.AwaitTermination(awaitCtx)

	return results
}

// OneShotFanOut spawns a worker per task and dispatches them concurrently,
// joining all results before returning. Results are re-associated with
// tasks by position and ID, never by arrival order. A semaphore caps the
// number of simultaneously live workers so an n-task batch cannot fork n
// processes at once.
type OneShotFanOut struct {
	spawner         worker.Spawner
	disp            *dispatch.Dispatcher
	shutdownTimeout time.Duration
	maxConcurrent   int
	logger          types.Logger
}

// NewOneShotFanOut builds the strategy.
func NewOneShotFanOut(deps Deps) *OneShotFanOut {
	maxConcurrent := deps.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &OneShotFanOut{
		spawner:         deps.Spawner,
		disp:            deps.Dispatcher,
		shutdownTimeout: deps.ShutdownTimeout,
		maxConcurrent:   maxConcurrent,
		logger:          deps.Logger,
	}
}

// Name identifies the strategy.
func (s *OneShotFanOut) Name() string { return "oneshot-fanout" }

// RunTasks fans the batch out across short-lived workers and joins all
// results.
func (s *OneShotFanOut) RunTasks(ctx context.Context, tasks []task.Task) []task.Result {
	registry := worker.NewRegistry(s.logger)
	results := make([]task.Result, len(tasks))
	sem := make(chan struct{}, s.maxConcurrent)

	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task.Task) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			w, err := s.spawner.Spawn(ctx)
			if err != nil {
				results[i] = task.NewFailure(t.ID, task.CodeWorkerUnavailable, err.Error())
				return
			}
			registry.Track(w)

			results[i] = s.disp.Dispatch(ctx, w, t)

			shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
			defer cancel()
			w.Shutdown(shutdownCtx)
		}(i, t)
	}
	wg.Wait()

	awaitCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	registry.AwaitTermination(awaitCtx)

	return results
}
