package worker

import (
	"context"
	"sync"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
)

// Registry tracks every spawned worker so a batch is only considered
// complete once all of its workers have confirmed termination. Workers that
// fail to exit within the grace period are force-killed rather than left
// orphaned.
type Registry struct {
	logger types.Logger

	mu      sync.Mutex
	workers []Worker
	spawned int
}

// NewRegistry creates an empty registry.
func NewRegistry(logger types.Logger) *Registry {
	return &Registry{logger: logger}
}

// Track registers a spawned worker.
func (r *Registry) Track(w Worker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers = append(r.workers, w)
	r.spawned++
}

// Spawned returns the total number of workers ever tracked.
func (r *Registry) Spawned() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.spawned
}

// AwaitTermination blocks until every tracked worker has terminated. When
// ctx expires, remaining workers are killed and the wait resumes until they
// are reaped. Returns ctx.Err() if any worker had to be killed.
func (r *Registry) AwaitTermination(ctx context.Context) error {
	r.mu.Lock()
	workers := make([]Worker, len(r.workers))
	copy(workers, r.workers)
	r.mu.Unlock()

	var killErr error
	for _, w := range workers {
		select {
		case <-w.Done():
			continue
		case <-ctx.Done():
			r.logger.Warn(ctx, "Killing straggler worker", types.Fields{
				"worker_id": w.ID(),
				"state":     w.State().String(),
			})
			w.Kill()
			<-w.Done()
			killErr = ctx.Err()
		}
	}

	r.mu.Lock()
	r.workers = r.workers[:0]
	r.mu.Unlock()

	return killErr
}
