package use_cases

import "sync"

// RunRegistry tracks the cancel hooks of in-flight reconciliation runs so
// the API surface can stop a batched run at its next chunk boundary.
type RunRegistry struct {
	mu    sync.Mutex
	hooks map[string]func()
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{hooks: map[string]func(){}}
}

func (r *RunRegistry) Register(runID string, cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[runID] = cancel
}

func (r *RunRegistry) Unregister(runID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.hooks, runID)
}

// Cancel fires the run's cancel hook. Returns false when the run is not
// active anymore (finished, or never batched).
func (r *RunRegistry) Cancel(runID string) bool {
	r.mu.Lock()
	cancel, exists := r.hooks[runID]
	r.mu.Unlock()

	if !exists {
		return false
	}

	cancel()
	return true
}
