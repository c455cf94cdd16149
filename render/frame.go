package render

import "sync"

// FrameQueue collects display refresh callbacks until the next Flush
type FrameQueue struct {
	mu      sync.Mutex
	pending []func()
}

// RequestFrame queues fn for the next frame
func (q *FrameQueue) RequestFrame(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Flush runs callbacks queued before the call; callbacks requested during Flush wait for the next one
func (q *FrameQueue) Flush() int {
	q.mu.Lock()
	run := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range run {
		fn()
	}
	return len(run)
}

// Pending returns the number of queued callbacks
func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
