// Package jobqueue runs debounced background jobs, at most one at a time,
// and reports their results on the interactive goroutine.
package jobqueue

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"qrtoolkit/failure"
	"qrtoolkit/ods"
)

// DefaultDelay is the quiet period a Runner waits for before starting.
const DefaultDelay = 200 * time.Millisecond

// Dispatcher runs functions on the interactive goroutine, in order.
// Post must not block.
type Dispatcher interface {
	Post(f func())
}

// State is where a Runner is in its cycle.
type State int

const (
	Idle State = iota
	Scheduled
	Running
)

func (s State) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case Running:
		return "running"
	default:
		return "idle"
	}
}

// Config describes the job and its callbacks. Every callback except
// Compute is invoked through the Dispatcher.
type Config[R, T any] struct {
	Name  string
	Delay time.Duration

	// Compute runs in the background. It should return ctx.Err() soon after
	// ctx is cancelled.
	Compute func(ctx context.Context, req R) (T, error)

	// OnStart runs just before a job starts.
	OnStart func()
	// OnSuccess receives the result of the current job.
	OnSuccess func(req R, v T)
	// OnFailure receives the error of the current job. OnClear follows it.
	OnFailure func(req R, err error)
	// OnClear drops resources held for the view.
	OnClear func()
	// Release receives results that are discarded.
	Release func(v T)
	// Busy shows or hides the loading indicator.
	Busy func(visible bool)
}

type task[R, T any] struct {
	req     R
	ctx     context.Context
	cancel  context.CancelFunc
	aborted atomic.Bool
	done    chan struct{}
}

func (t *task[R, T]) abort() {
	t.aborted.Store(true)
	t.cancel()
}

// Runner coalesces submitted requests and runs Compute for the latest one
// once no new request has arrived for Delay.
type Runner[R, T any] struct {
	ui  Dispatcher
	cfg Config[R, T]

	mu      sync.Mutex
	state   State
	pending R
	gen     uint64
	timer   *time.Timer
	active  *task[R, T]
	waiting int
}

// New returns an idle Runner.
func New[R, T any](ui Dispatcher, cfg Config[R, T]) *Runner[R, T] {
	if cfg.Compute == nil {
		panic("jobqueue: Compute is required")
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Name == "" {
		cfg.Name = "job"
	}
	return &Runner[R, T]{ui: ui, cfg: cfg}
}

// State returns the current state.
func (r *Runner[R, T]) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Submit records req as the latest input and restarts the quiet period.
// If a job is running it is cancelled and Submit blocks until the job
// has returned.
func (r *Runner[R, T]) Submit(req R) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopActive()
	r.pending = req
	r.gen++
	if r.timer != nil {
		r.timer.Stop()
	}
	gen := r.gen
	r.timer = time.AfterFunc(r.cfg.Delay, func() { r.fire(gen) })
	r.state = Scheduled
}

// DisposeAll cancels and waits for the running job, drops the pending one
// and clears held resources. It may be called any number of times.
func (r *Runner[R, T]) DisposeAll() {
	r.mu.Lock()
	r.gen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.stopActive()
	var zero R
	r.pending = zero
	r.state = Idle
	r.mu.Unlock()

	r.ui.Post(func() {
		if r.cfg.Busy != nil {
			r.cfg.Busy(false)
		}
		if r.cfg.OnClear != nil {
			r.cfg.OnClear()
		}
	})
}

// stopActive aborts the active job and waits for its Compute to return.
// r.mu must be held; it is released while waiting.
func (r *Runner[R, T]) stopActive() {
	for r.active != nil {
		t := r.active
		r.active = nil
		t.abort()
		r.waiting++
		r.mu.Unlock()
		<-t.done
		r.mu.Lock()
		r.waiting--
	}
}

func (r *Runner[R, T]) fire(gen uint64) {
	r.mu.Lock()
	if gen != r.gen || r.active != nil || r.waiting > 0 {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &task[R, T]{
		req:    r.pending,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.active = t
	r.timer = nil
	r.state = Running
	r.mu.Unlock()

	r.ui.Post(func() {
		if t.aborted.Load() {
			return
		}
		if r.cfg.Busy != nil {
			r.cfg.Busy(true)
		}
		if r.cfg.OnStart != nil {
			r.cfg.OnStart()
		}
	})
	go r.run(t)
}

func (r *Runner[R, T]) run(t *task[R, T]) {
	startAt := time.Now()
	v, err := r.compute(t)
	t.cancel()
	ods.ODS("%s: finished in %dms (err: %v)", r.cfg.Name, time.Since(startAt).Milliseconds(), err)
	r.ui.Post(func() { r.complete(t, v, err) })
	close(t.done)
}

func (r *Runner[R, T]) compute(t *task[R, T]) (v T, err error) {
	defer func() {
		if e := recover(); e != nil {
			ods.Recover(e)
			err = recovered(e)
		}
	}()
	if err = t.ctx.Err(); err != nil {
		return v, err
	}
	return r.cfg.Compute(t.ctx, t.req)
}

func (r *Runner[R, T]) complete(t *task[R, T], v T, err error) {
	r.mu.Lock()
	current := r.active == t
	if current {
		r.active = nil
		if r.state == Running {
			r.state = Idle
		}
	}
	idle := r.active == nil
	r.mu.Unlock()

	if idle && r.cfg.Busy != nil {
		r.cfg.Busy(false)
	}
	if !current || t.aborted.Load() || failure.IsCancelled(err) {
		ods.ODS("%s: discarded stale result", r.cfg.Name)
		if err == nil && r.cfg.Release != nil {
			r.cfg.Release(v)
		}
		return
	}
	if err != nil {
		if r.cfg.OnFailure != nil {
			r.cfg.OnFailure(t.req, err)
		}
		if r.cfg.OnClear != nil {
			r.cfg.OnClear()
		}
		return
	}
	if r.cfg.OnSuccess != nil {
		r.cfg.OnSuccess(t.req, v)
	}
}

// recovered turns a panic value into an error. Allocation panics are
// reported as resource exhaustion.
func recovered(v any) error {
	msg := fmt.Sprint(v)
	if _, ok := v.(runtime.Error); ok {
		if strings.Contains(msg, "out of memory") || strings.Contains(msg, "makeslice") {
			return errors.Wrap(failure.ErrResourceExhausted, msg)
		}
	}
	return errors.Errorf("jobqueue: unexpected error occurred: %v", v)
}
