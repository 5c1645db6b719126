// Package pool implements the worker lifecycle strategies benchmarked by
// the harness: direct in-process calls, one persistent worker, and one-shot
// workers spawned per task, sequentially or fanned out.
package pool

import (
	"context"
	"fmt"
	"time"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/dispatch"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/task"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/worker"
)

// Strategy runs a batch of tasks under one worker lifecycle policy.
// RunTasks always returns exactly one result per task, in task order; a
// failed task never aborts the batch.
type Strategy interface {
	// Name identifies the strategy in logs and reports.
	Name() string

	// RunTasks processes the batch and returns its results in input
	// order.
	RunTasks(ctx context.Context, tasks []task.Task) []task.Result
}

// Deps bundles the collaborators shared by the strategies.
type Deps struct {
	// Exec runs a task directly in the calling context (the in-process
	// strategies).
	Exec worker.Executor

	// Spawner launches workers (the worker-backed strategies).
	Spawner worker.Spawner

	// Dispatcher performs single task round trips against workers.
	Dispatcher *dispatch.Dispatcher

	// ShutdownTimeout bounds each worker's exit before it is killed.
	ShutdownTimeout time.Duration

	// MaxConcurrent caps simultaneously live workers in the fan-out
	// strategy.
	MaxConcurrent int

	Logger  types.Logger
	Metrics types.Metrics
}

// Selector values accepted by ForSelector, mirroring the harness CLI.
const (
	SelectorInProcessParallel   = "1"
	SelectorInProcessSequential = "2"
	SelectorOneShotSequential   = "3"
	SelectorPersistent          = "4"
	SelectorOneShotFanOut       = "5"
)

// ForSelector builds the strategy for a CLI selector.
func ForSelector(selector string, deps Deps) (Strategy, error) {
	switch selector {
	case SelectorInProcessParallel:
		return NewInProcessParallel(deps), nil
	case SelectorInProcessSequential:
		return NewInProcessSequential(deps), nil
	case SelectorOneShotSequential:
		return NewOneShotSequential(deps), nil
	case SelectorPersistent:
		return NewPersistentSequential(deps), nil
	case SelectorOneShotFanOut:
		return NewOneShotFanOut(deps), nil
	default:
		return nil, fmt.Errorf("unknown strategy selector %q", selector)
	}
}

// failAll marks every task failed with the same cause, preserving order.
// Used when the batch cannot even acquire a worker.
func failAll(tasks []task.Task, code, message string) []task.Result {
	results := make([]task.Result, 0, len(tasks))
	for _, t := range tasks {
		results = append(results, task.NewFailure(t.ID, code, message))
	}
	return results
}
