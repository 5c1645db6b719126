// Package dispatch implements the single-round-trip task dispatcher: send
// exactly one task to a worker, await exactly one response, and map it to a
// result.
package dispatch

import (
	"context"
	"time"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/task"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/worker"
)

// Dispatcher issues tasks to workers one round trip at a time. It is
// stateless across dispatches and safe for concurrent use against distinct
// workers; a single worker must never see overlapping dispatches.
type Dispatcher struct {
	timeout time.Duration
	logger  types.Logger
	metrics types.Metrics
}

// New creates a dispatcher with the given per-dispatch timeout. On expiry
// the task fails with task.CodeTimeout and the owning worker is killed so
// it cannot dangle.
func New(timeout time.Duration, logger types.Logger, metrics types.Metrics) *Dispatcher {
	return &Dispatcher{
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Dispatch sends t to w and blocks until one response, one channel error,
// or the deadline, whichever comes first. A task failure leaves the worker
// Ready; a channel error or timeout ends it.
func (d *Dispatcher) Dispatch(ctx context.Context, w worker.Worker, t task.Task) task.Result {
	start := time.Now()
	d.metrics.StartOperation("dispatch")
	defer d.metrics.EndOperation("dispatch")

	res := d.dispatch(ctx, w, t)
	res.Duration = time.Since(start)

	if res.Success {
		d.metrics.RecordSuccess("dispatch")
	} else {
		d.metrics.RecordError("dispatch", res.Err.Code)
		d.logger.Warn(ctx, "Dispatch failed", types.Fields{
			"task_id":   t.ID,
			"worker_id": w.ID(),
			"code":      res.Err.Code,
			"error":     res.Err.Message,
		})
	}
	d.metrics.RecordDuration("dispatch", time.Since(start).Seconds())

	return res
}

func (d *Dispatcher) dispatch(ctx context.Context, w worker.Worker, t task.Task) task.Result {
	if err := w.Submit(worker.Request{InputPath: t.InputPath, OutputPath: t.OutputPath}); err != nil {
		return task.NewFailure(t.ID, task.CodeWorkerUnavailable, err.Error())
	}

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-w.Responses():
		if !ok {
			return task.NewFailure(t.ID, task.CodeChannel, "worker channel closed mid-task")
		}
		return resultFromResponse(t, resp)

	case <-w.Done():
		// The worker may have delivered its response just before
		// dying; prefer it over a synthetic channel error.
		select {
		case resp, ok := <-w.Responses():
			if ok {
				return resultFromResponse(t, resp)
			}
		default:
		}
		return task.NewFailure(t.ID, task.CodeChannel, "worker terminated mid-task")

	case <-timer.C:
		w.Kill()
		return task.NewFailure(t.ID, task.CodeTimeout, "no response within "+d.timeout.String())

	case <-ctx.Done():
		w.Kill()
		return task.NewFailure(t.ID, task.CodeTimeout, ctx.Err().Error())
	}
}

func resultFromResponse(t task.Task, resp worker.Response) task.Result {
	if resp.OK {
		return task.NewSuccess(t.ID, resp.OutputPath, resp.Bytes)
	}

	code := resp.Code
	if code == "" {
		code = task.CodeConversion
	}
	return task.NewFailure(t.ID, code, resp.Error)
}
