package task

import "sync"

// Inline run the work on the calling worker
type Inline struct{}

// Do run fn now
func (Inline) Do(fn func()) { fn() }

// Queue buffer the work until the host drains it on its main step
type Queue struct {
	fns   []func()
	mutex sync.Mutex
}

// NewQueue create a main step queue
func NewQueue() *Queue {
	return &Queue{}
}

// Do buffer fn
func (q *Queue) Do(fn func()) {
	q.mutex.Lock()
	q.fns = append(q.fns, fn)
	q.mutex.Unlock()
}

// Len the number of buffered works
func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.fns)
}

// Drain run the buffered works in FIFO order on the calling goroutine, works
// buffered while draining wait for the next drain
func (q *Queue) Drain() int {
	q.mutex.Lock()
	fns := q.fns
	q.fns = nil
	q.mutex.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}
