package pool

import (
	"context"
	"time"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/dispatch"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/task"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/worker"
)

// PersistentSequential spawns a single worker for the whole batch,
// dispatches every task to it strictly in order, and shuts it down after
// the last one. Exactly one worker exists at a time: strict ordering and
// bounded resource use, at the cost of serialized latency.
type PersistentSequential struct {
	spawner         worker.Spawner
	disp            *dispatch.Dispatcher
	shutdownTimeout time.Duration
	logger          types.Logger
}

// NewPersistentSequential builds the strategy.
func NewPersistentSequential(deps Deps) *PersistentSequential {
	return &PersistentSequential{
		spawner:         deps.Spawner,
		disp:            deps.Dispatcher,
		shutdownTimeout: deps.ShutdownTimeout,
		logger:          deps.Logger,
	}
}

// Name identifies the strategy.
func (s *PersistentSequential) Name() string { return "persistent-sequential" }

// RunTasks dispatches the batch to one reused worker.
func (s *PersistentSequential) RunTasks(ctx context.Context, tasks []task.Task) []task.Result {
	registry := worker.NewRegistry(s.logger)

	w, err := s.spawner.Spawn(ctx)
	if err != nil {
		return failAll(tasks, task.CodeWorkerUnavailable, err.Error())
	}
	registry.Track(w)

	results := make([]task.Result, 0, len(tasks))
	for _, t := range tasks {
		results = append(results, s.disp.Dispatch(ctx, w, t))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	if err := w.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "Worker shutdown was forced", types.Fields{
			"worker_id": w.ID(),
			"error":     err.Error(),
		})
	}

	awaitCtx, cancelAwait := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancelAwait()
	registry.AwaitTermination(awaitCtx)

	return results
}
