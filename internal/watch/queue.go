package watch

import "sync"

// request asks the worker for a build.
type request struct {
	force   bool
	trigger string
}

// rebuildQueue holds at most one pending build. Requests arriving while one is pending
// are merged into it, so a burst of changes during a build causes exactly one more build.
type rebuildQueue struct {
	mu      sync.Mutex
	pending *request
	signal  chan struct{}
}

func newRebuildQueue() *rebuildQueue {
	return &rebuildQueue{signal: make(chan struct{}, 1)}
}

func (q *rebuildQueue) push(r request) {
	q.mu.Lock()
	if q.pending == nil {
		q.pending = &r
	} else {
		q.pending.force = q.pending.force || r.force
	}
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *rebuildQueue) pop() (request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		return request{}, false
	}
	r := *q.pending
	q.pending = nil
	return r, true
}
