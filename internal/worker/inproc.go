package worker

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
)

// Inproc is a worker whose execution context is a goroutine speaking the
// same request/response protocol as a subprocess worker, over Go channels
// instead of pipes. It backs the "inproc" worker mode and the dispatch
// tests.
type Inproc struct {
	id     string
	exec   Executor
	logger types.Logger
	cancel context.CancelFunc

	mu    sync.Mutex
	state State

	reqs     chan Request
	resps    chan Response
	done     chan struct{}
	termOnce sync.Once
}

// StartInproc launches an in-process worker. The worker lives until it is
// shut down, killed, or ctx is cancelled.
func StartInproc(ctx context.Context, exec Executor, logger types.Logger) *Inproc {
	loopCtx, cancel := context.WithCancel(ctx)

	w := &Inproc{
		id:     uuid.New().String(),
		exec:   exec,
		logger: logger,
		cancel: cancel,
		state:  StateStarting,
		reqs:   make(chan Request, 1),
		resps:  make(chan Response, 1),
		done:   make(chan struct{}),
	}

	w.setState(StateReady)
	go w.loop(loopCtx)

	return w
}

// ID returns the worker identifier.
func (w *Inproc) ID() string { return w.id }

// State returns the current lifecycle state.
func (w *Inproc) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Submit sends one task message. The worker must be Ready.
func (w *Inproc) Submit(req Request) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateReady {
		return ErrUnavailable
	}
	w.state = StateBusy

	select {
	case w.reqs <- req:
		return nil
	default:
		// The channel has capacity for the single in-flight request,
		// so this only happens if the invariant was broken elsewhere.
		return ErrUnavailable
	}
}

// Responses delivers one response per submitted task.
func (w *Inproc) Responses() <-chan Response { return w.resps }

// Shutdown sends the exit message and waits for the loop to finish. On
// context expiry the worker is killed.
func (w *Inproc) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	switch w.state {
	case StateTerminated:
		w.mu.Unlock()
		return nil
	case StateExiting:
		w.mu.Unlock()
	default:
		w.state = StateExiting
		w.mu.Unlock()
		select {
		case w.reqs <- exitRequest():
		case <-w.done:
			return nil
		}
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.Kill()
		<-w.done
		return ctx.Err()
	}
}

// Kill cancels the loop immediately.
func (w *Inproc) Kill() {
	w.cancel()
}

// Done is closed once the loop has exited.
func (w *Inproc) Done() <-chan struct{} { return w.done }

func (w *Inproc) loop(ctx context.Context) {
	defer w.terminate()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.reqs:
			if req.Exit {
				return
			}

			bytes, err := w.exec.Run(ctx, req.InputPath, req.OutputPath)

			var resp Response
			if err != nil {
				resp = Response{Code: Classify(err), Error: err.Error()}
			} else {
				resp = Response{OK: true, OutputPath: req.OutputPath, Bytes: bytes}
			}

			// Back to Ready before the response is observable, so a
			// caller that consumed the response can submit again.
			w.setState(StateReady)

			select {
			case w.resps <- resp:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *Inproc) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

func (w *Inproc) terminate() {
	w.termOnce.Do(func() {
		w.cancel()
		w.setState(StateTerminated)
		close(w.resps)
		close(w.done)
	})
}

// InprocSpawner spawns in-process workers sharing one executor.
type InprocSpawner struct {
	exec   Executor
	logger types.Logger
}

// NewInprocSpawner creates a spawner for in-process workers.
func NewInprocSpawner(exec Executor, logger types.Logger) *InprocSpawner {
	return &InprocSpawner{exec: exec, logger: logger}
}

// Spawn launches a new in-process worker.
func (s *InprocSpawner) Spawn(ctx context.Context) (Worker, error) {
	return StartInproc(ctx, s.exec, s.logger), nil
}
