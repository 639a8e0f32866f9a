package statementq

import (
	"context"
	"fmt"
	"sync"
)

// Handle is the completion handle of one in-flight batch.
type Handle struct {
	batchID string
	done    chan struct{}
	err     error
}

// BatchID returns the correlation id of the batch.
func (h *Handle) BatchID() string {
	return h.batchID
}

// Done is closed once the batch terminal message has been processed.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the last delivery error of the batch, or nil. It is only meaningful
// after Done is closed.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Registry maps outstanding batch ids to their completion handles.
type Registry struct {
	mu      sync.Mutex
	handles map[string]*Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*Handle)}
}

// Register creates the handle for a batch about to be dispatched.
func (r *Registry) Register(batchID string) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handles[batchID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateBatch, batchID)
	}
	h := &Handle{batchID: batchID, done: make(chan struct{})}
	r.handles[batchID] = h

	return h, nil
}

// Resolve settles and forgets the handle. A nil err resolves it, anything else rejects it.
// It reports whether a handle was registered under batchID.
func (r *Registry) Resolve(batchID string, err error) bool {
	r.mu.Lock()
	h, ok := r.handles[batchID]
	delete(r.handles, batchID)
	r.mu.Unlock()
	if !ok {
		return false
	}
	h.err = err
	close(h.done)

	return true
}

// Len returns the number of outstanding handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.handles)
}

// Wait blocks until every handle registered at call time has settled or ctx ends.
func (r *Registry) Wait(ctx context.Context) error {
	r.mu.Lock()
	pending := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		pending = append(pending, h)
	}
	r.mu.Unlock()

	for _, h := range pending {
		select {
		case <-h.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}
