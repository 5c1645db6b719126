// Package worker implements the worker side of the task-dispatch core: the
// channel protocol, the serve loop, and the two execution contexts (real
// subprocesses and in-process goroutines) behind a single interface.
package worker

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when a task is submitted to a worker whose
// channel is closed or that is not in the Ready state.
var ErrUnavailable = errors.New("worker unavailable")

// Worker is a live, addressable execution context with a message channel.
// A worker processes at most one task at a time: Submit may only be called
// again after the previous task's response has been consumed.
//
// Each worker is exclusively owned by the pool strategy that spawned it.
type Worker interface {
	// ID identifies the worker in logs and the registry.
	ID() string

	// State returns the current lifecycle state.
	State() State

	// Submit sends exactly one task message to the worker. It fails with
	// ErrUnavailable if the worker is not Ready.
	Submit(req Request) error

	// Responses delivers exactly one response per submitted task. The
	// channel is closed when the worker terminates.
	Responses() <-chan Response

	// Shutdown sends the exit message and awaits confirmed termination.
	// If the context expires first, the worker is force-killed.
	Shutdown(ctx context.Context) error

	// Kill force-terminates the execution context immediately.
	Kill()

	// Done is closed once the worker has fully terminated.
	Done() <-chan struct{}
}

// Spawner launches new workers. The proc and inproc implementations let the
// harness switch between subprocess and goroutine execution contexts
// without touching the dispatch path.
type Spawner interface {
	Spawn(ctx context.Context) (Worker, error)
}

// Executor runs the body of one task. It is implemented by
// convert.Pipeline.
type Executor interface {
	Run(ctx context.Context, inputPath, outputPath string) (int64, error)
}
