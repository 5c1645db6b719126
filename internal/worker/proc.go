package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/google/uuid"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
)

// Proc is a worker backed by a real subprocess. The message channel is the
// child's stdin/stdout pair carrying one JSON object per message; stderr
// passes through for diagnostics.
type Proc struct {
	id     string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	logger types.Logger

	mu    sync.Mutex
	state State
	enc   *json.Encoder

	resps    chan Response
	done     chan struct{}
	termOnce sync.Once
}

// StartProc spawns a subprocess worker running binPath with args. The child
// is expected to run the Serve loop over its stdin/stdout. Cancelling ctx
// kills the child.
func StartProc(ctx context.Context, binPath string, args []string, logger types.Logger) (*Proc, error) {
	cmd := exec.CommandContext(ctx, binPath, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open worker stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open worker stdout: %w", err)
	}

	w := &Proc{
		id:     uuid.New().String(),
		cmd:    cmd,
		stdin:  stdin,
		logger: logger,
		state:  StateStarting,
		enc:    json.NewEncoder(stdin),
		resps:  make(chan Response, 1),
		done:   make(chan struct{}),
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start worker process: %w", err)
	}

	w.logger.Debug(ctx, "Worker process started", types.Fields{
		"worker_id": w.id,
		"pid":       cmd.Process.Pid,
	})

	w.setState(StateReady)
	go w.readLoop(stdout)

	return w, nil
}

// ID returns the worker identifier.
func (w *Proc) ID() string { return w.id }

// State returns the current lifecycle state.
func (w *Proc) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Submit sends one task message down the child's stdin. The worker must be
// Ready.
func (w *Proc) Submit(req Request) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateReady {
		return ErrUnavailable
	}

	if err := w.enc.Encode(req); err != nil {
		// Broken pipe: the child is gone.
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	w.state = StateBusy
	return nil
}

// Responses delivers one response per submitted task. Closed when the child
// exits.
func (w *Proc) Responses() <-chan Response { return w.resps }

// Shutdown sends the exit message and waits for the child to terminate. On
// context expiry the child is killed and the wait completes.
func (w *Proc) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	switch w.state {
	case StateTerminated:
		w.mu.Unlock()
		return nil
	case StateExiting:
		w.mu.Unlock()
	default:
		w.state = StateExiting
		err := w.enc.Encode(exitRequest())
		w.mu.Unlock()
		if err != nil {
			w.Kill()
		}
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.Kill()
		<-w.done
		return fmt.Errorf("worker %s did not exit in time: %w", w.id, ctx.Err())
	}
}

// Kill force-terminates the child process. Termination is observed and
// published by the read loop once the process is reaped.
func (w *Proc) Kill() {
	w.stdin.Close()
	if w.cmd.Process != nil {
		w.cmd.Process.Kill()
	}
}

// Done is closed once the child has fully exited.
func (w *Proc) Done() <-chan struct{} { return w.done }

// readLoop pumps responses from the child's stdout until the exit
// acknowledgement or a channel error, then reaps the process.
func (w *Proc) readLoop(stdout io.Reader) {
	dec := json.NewDecoder(stdout)

	for {
		var resp Response
		if err := dec.Decode(&resp); err != nil {
			break
		}
		if resp.Exited {
			break
		}

		// Ready again before the response is observable.
		w.setState(StateReady)
		w.resps <- resp
	}

	w.cmd.Wait()
	w.terminate()
}

func (w *Proc) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

func (w *Proc) terminate() {
	w.termOnce.Do(func() {
		w.setState(StateTerminated)
		close(w.resps)
		close(w.done)
	})
}

// ProcSpawner spawns subprocess workers from a binary path, usually the
// harness binary itself in worker mode.
type ProcSpawner struct {
	binPath string
	args    []string
	logger  types.Logger
}

// NewProcSpawner creates a spawner for subprocess workers.
func NewProcSpawner(binPath string, args []string, logger types.Logger) *ProcSpawner {
	return &ProcSpawner{binPath: binPath, args: args, logger: logger}
}

// Spawn launches a new subprocess worker.
func (s *ProcSpawner) Spawn(ctx context.Context) (Worker, error) {
	return StartProc(ctx, s.binPath, s.args, s.logger)
}
