package gui

import (
	"sync"

	"qrtoolkit/ods"
)

// Queue is an unbounded FIFO of functions to run on the GUI goroutine.
// Post never blocks, so background goroutines can report while the GUI
// goroutine is itself waiting on them.
type Queue struct {
	mu     sync.Mutex
	items  []func()
	notify chan struct{}
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Post appends f.
func (q *Queue) Post(f func()) {
	q.mu.Lock()
	q.items = append(q.items, f)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// C receives a value when functions may be waiting.
func (q *Queue) C() <-chan struct{} {
	return q.notify
}

// Len returns the number of waiting functions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain runs waiting functions in order until none are left, including
// those posted while draining, and returns how many ran.
func (q *Queue) Drain() int {
	n := 0
	for {
		q.mu.Lock()
		items := q.items
		q.items = nil
		q.mu.Unlock()
		if len(items) == 0 {
			return n
		}
		for _, f := range items {
			run(f)
			n++
		}
	}
}

func run(f func()) {
	defer func() {
		if err := recover(); err != nil {
			ods.Recover(err)
		}
	}()
	f()
}
